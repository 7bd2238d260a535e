package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/debate-tab/internal/handler/dto"
	"github.com/yourusername/debate-tab/internal/service"
)

// RoundHandler обрабатывает раунды, комнаты и их жизненный цикл
type RoundHandler struct {
	roundService *service.RoundService
}

// NewRoundHandler создает обработчик раундов
func NewRoundHandler(roundService *service.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

func (h *RoundHandler) ListRounds(c *gin.Context) {
	rounds, err := h.roundService.ListRounds(c.Request.Context())
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, rounds)
}

func (h *RoundHandler) GetRound(c *gin.Context) {
	round, err := h.roundService.GetRound(c.Request.Context(), c.MustGet("roundID").(uint))
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, round)
}

// CreateRound создает пустой отборочный раунд для ручной расстановки
func (h *RoundHandler) CreateRound(c *gin.Context) {
	var req dto.CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	round, err := h.roundService.CreateRound(c.Request.Context(), req.Number, req.Name, req.Motion, req.InfoSlide)
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusCreated, round)
}

func (h *RoundHandler) UpdateRound(c *gin.Context) {
	var req dto.UpdateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	round, err := h.roundService.UpdateRound(c.Request.Context(), c.MustGet("roundID").(uint), req.Name, req.Motion, req.InfoSlide)
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, round)
}

func (h *RoundHandler) DeleteRound(c *gin.Context) {
	if err := h.roundService.DeleteRound(c.Request.Context(), c.MustGet("roundID").(uint)); err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Status возвращает степень заполненности раунда оценками
func (h *RoundHandler) Status(c *gin.Context) {
	status, err := h.roundService.Status(c.Request.Context(), c.MustGet("roundID").(uint))
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Standings возвращает места и очки в каждой комнате
func (h *RoundHandler) Standings(c *gin.Context) {
	rankings, err := h.roundService.Standings(c.Request.Context(), c.MustGet("roundID").(uint))
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, rankings)
}

func (h *RoundHandler) Bracket(c *gin.Context) {
	view, err := h.roundService.Bracket(c.Request.Context(), c.MustGet("roundID").(uint))
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBracketResponse(view))
}

// Complete завершает полностью оценённый раунд
func (h *RoundHandler) Complete(c *gin.Context) {
	status, err := h.roundService.CompleteRound(c.Request.Context(), c.MustGet("roundID").(uint))
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *RoundHandler) Results(c *gin.Context) {
	results, err := h.roundService.Results(c.Request.Context(), c.MustGet("roundID").(uint))
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// CreateAssignment вручную создает комнату отборочного раунда
func (h *RoundHandler) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.roundService.CreateAssignment(c.Request.Context(), c.MustGet("roundID").(uint), req.RoomID, req.Slots())
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *RoundHandler) GetAssignment(c *gin.Context) {
	a, err := h.roundService.GetAssignment(c.Request.Context(), c.MustGet("assignmentID").(uint))
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *RoundHandler) DeleteAssignment(c *gin.Context) {
	if err := h.roundService.DeleteAssignment(c.Request.Context(), c.MustGet("assignmentID").(uint)); err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetJudges заменяет судей комнаты
func (h *RoundHandler) SetJudges(c *gin.Context) {
	var req dto.SetJudgesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.roundService.SetJudges(c.Request.Context(), c.MustGet("assignmentID").(uint), req.JudgeIDs)
	if err != nil {
		handleServiceError(c, "RoundHandler", err)
		return
	}
	c.JSON(http.StatusOK, a)
}
