package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
)

// handleServiceError переводит ошибки сервисов в HTTP ответ
func handleServiceError(c *gin.Context, component string, err error) {
	if genErr, ok := apperrors.AsGenerationError(err); ok {
		body := gin.H{
			"error":      genErr.Error(),
			"error_type": genErr.Kind,
			"stage":      genErr.Stage,
			"required":   genErr.Required,
			"available":  genErr.Available,
		}
		if genErr.Source != 0 {
			body["source_round"] = genErr.Source
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation"})
	case errors.Is(err, apperrors.ErrPrecondition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "precondition"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "error_type": "forbidden"})
	default:
		log.Printf("ERROR: Internal server error in %s: %v", component, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindError отвечает 400 на невалидное тело запроса
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error(), "error_type": "invalid_request"})
}
