package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"torgplus/server/internal/services"
)

// respondError маппит типизированные ошибки ядра на HTTP статусы
// Ошибки валидации и конфликтов отдаются как есть, прочее прячется за 500
func respondError(c *gin.Context, err error) {
	switch {
	case services.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNumberingConflict):
		// Внутренние ретраи уже исчерпаны, клиент может повторить запрос
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Внутренняя ошибка",
			"details": err.Error(),
		})
	}
}
