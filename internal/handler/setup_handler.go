package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/debate-tab/internal/handler/dto"
	"github.com/yourusername/debate-tab/internal/service"
)

// SetupHandler обрабатывает справочники турнира: команды, аудитории, судей
type SetupHandler struct {
	setupService *service.SetupService
}

// NewSetupHandler создает обработчик справочников
func NewSetupHandler(setupService *service.SetupService) *SetupHandler {
	return &SetupHandler{setupService: setupService}
}

func speakerInputs(req dto.TeamRequest) []service.ParticipantInput {
	if req.Speakers == nil {
		return nil
	}
	inputs := make([]service.ParticipantInput, len(req.Speakers))
	for i, s := range req.Speakers {
		inputs[i] = service.ParticipantInput{ID: s.ID, Name: s.Name}
	}
	return inputs
}

// --- Команды ---

func (h *SetupHandler) ListTeams(c *gin.Context) {
	teams, err := h.setupService.ListTeams(c.Request.Context())
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

func (h *SetupHandler) GetTeam(c *gin.Context) {
	team, err := h.setupService.GetTeam(c.Request.Context(), c.MustGet("teamID").(uint))
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusOK, team)
}

func (h *SetupHandler) CreateTeam(c *gin.Context) {
	var req dto.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	team, err := h.setupService.CreateTeam(c.Request.Context(), req.Name, req.Institution, speakerInputs(req))
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

// UpdateTeam обновляет команду; без поля speakers состав не меняется
func (h *SetupHandler) UpdateTeam(c *gin.Context) {
	var req dto.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	team, err := h.setupService.UpdateTeam(c.Request.Context(), c.MustGet("teamID").(uint), req.Name, req.Institution, speakerInputs(req))
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusOK, team)
}

func (h *SetupHandler) DeleteTeam(c *gin.Context) {
	if err := h.setupService.DeleteTeam(c.Request.Context(), c.MustGet("teamID").(uint)); err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Аудитории ---

func (h *SetupHandler) ListRooms(c *gin.Context) {
	rooms, err := h.setupService.ListRooms(c.Request.Context())
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *SetupHandler) CreateRoom(c *gin.Context) {
	var req dto.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	room, err := h.setupService.CreateRoom(c.Request.Context(), req.Name)
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *SetupHandler) UpdateRoom(c *gin.Context) {
	var req dto.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	room, err := h.setupService.UpdateRoom(c.Request.Context(), c.MustGet("roomID").(uint), req.Name)
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *SetupHandler) DeleteRoom(c *gin.Context) {
	if err := h.setupService.DeleteRoom(c.Request.Context(), c.MustGet("roomID").(uint)); err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Судьи ---

func (h *SetupHandler) ListJudges(c *gin.Context) {
	judges, err := h.setupService.ListJudges(c.Request.Context())
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusOK, judges)
}

func (h *SetupHandler) CreateJudge(c *gin.Context) {
	var req dto.JudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	judge, err := h.setupService.CreateJudge(c.Request.Context(), req.Name, req.ExternalSubject)
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusCreated, judge)
}

func (h *SetupHandler) UpdateJudge(c *gin.Context) {
	var req dto.JudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	judge, err := h.setupService.UpdateJudge(c.Request.Context(), c.MustGet("judgeID").(uint), req.Name, req.ExternalSubject)
	if err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.JSON(http.StatusOK, judge)
}

func (h *SetupHandler) DeleteJudge(c *gin.Context) {
	if err := h.setupService.DeleteJudge(c.Request.Context(), c.MustGet("judgeID").(uint)); err != nil {
		handleServiceError(c, "SetupHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
