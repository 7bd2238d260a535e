package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/debate-tab/internal/service"
)

// StageHandler обрабатывает генерацию этапов
type StageHandler struct {
	bracketService *service.BracketService
	roundService   *service.RoundService
}

// NewStageHandler создает обработчик этапов
func NewStageHandler(bracketService *service.BracketService, roundService *service.RoundService) *StageHandler {
	return &StageHandler{bracketService: bracketService, roundService: roundService}
}

// ListStages возвращает все этапы плана с их текущим состоянием
func (h *StageHandler) ListStages(c *gin.Context) {
	stages, err := h.roundService.Stages(c.Request.Context())
	if err != nil {
		handleServiceError(c, "StageHandler", err)
		return
	}
	c.JSON(http.StatusOK, stages)
}

// GenerateStage создает раунд этапа с комнатами и позициями
func (h *StageHandler) GenerateStage(c *gin.Context) {
	number := int(c.MustGet("stageNumber").(uint))

	result, err := h.bracketService.GenerateStage(c.Request.Context(), number)
	if err != nil {
		handleServiceError(c, "StageHandler", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
