package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/debate-tab/internal/handler/dto"
	"github.com/yourusername/debate-tab/internal/middleware"
	"github.com/yourusername/debate-tab/internal/service"
)

// ScoreHandler принимает оценки судей
type ScoreHandler struct {
	scoreService *service.ScoreService
}

// NewScoreHandler создает обработчик оценок
func NewScoreHandler(scoreService *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

// SubmitScores сохраняет оценки судьи за комнату. Повторная отправка: 409.
func (h *ScoreHandler) SubmitScores(c *gin.Context) {
	assignmentID := c.MustGet("assignmentID").(uint)
	judgeID := c.MustGet(middleware.ContextJudgeID).(uint)

	var req dto.SubmitScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.scoreService.SubmitScores(c.Request.Context(), judgeID, assignmentID, req.Inputs())
	if err != nil {
		handleServiceError(c, "ScoreHandler", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
