package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"torgplus/server/internal/services"
)

// AuditController отдает журнал аудита подразделения
type AuditController struct {
	service *services.AuditService
}

// NewAuditController создает новый контроллер аудита
func NewAuditController(service *services.AuditService) *AuditController {
	return &AuditController{service: service}
}

// List возвращает последние записи журнала
// GET /api/v1/audit?limit=50
func (ac *AuditController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := ac.service.List(CallerFrom(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}
