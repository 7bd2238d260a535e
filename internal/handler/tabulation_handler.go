package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/debate-tab/internal/service"
)

// TabulationHandler отдаёт сводную таблицу и экспорт
type TabulationHandler struct {
	tabulationService *service.TabulationService
}

// NewTabulationHandler создает обработчик сводной таблицы
func NewTabulationHandler(tabulationService *service.TabulationService) *TabulationHandler {
	return &TabulationHandler{tabulationService: tabulationService}
}

// GetTabulation возвращает рейтинги этапов и спикеров
func (h *TabulationHandler) GetTabulation(c *gin.Context) {
	view, err := h.tabulationService.Tabulation(c.Request.Context())
	if err != nil {
		handleServiceError(c, "TabulationHandler", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Export выгружает сводную таблицу. Query: format=csv|xlsx (по умолчанию csv).
func (h *TabulationHandler) Export(c *gin.Context) {
	file, err := h.tabulationService.Export(c.Request.Context(), c.DefaultQuery("format", service.ExportCSV))
	if err != nil {
		handleServiceError(c, "TabulationHandler", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
