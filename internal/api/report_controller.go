package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"torgplus/server/internal/services"
)

// ReportController управляет API endpoints отчетов
type ReportController struct {
	service *services.ReportService
}

// NewReportController создает новый контроллер отчетов
func NewReportController(service *services.ReportService) *ReportController {
	return &ReportController{service: service}
}

// periodeFrom читает индекс периода из query, по умолчанию текущий месяц
func periodeFrom(c *gin.Context) int {
	periode, err := strconv.Atoi(c.DefaultQuery("periode", "1"))
	if err != nil {
		return 1
	}
	return periode
}

// GetStats возвращает статистику периода с дельтами к прошлому
// GET /api/v1/reports/stats?periode=1
func (rc *ReportController) GetStats(c *gin.Context) {
	stats, err := rc.service.Stats(CallerFrom(c), periodeFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetChart возвращает поденный ряд выручки и расходов
// GET /api/v1/reports/chart?periode=1
func (rc *ReportController) GetChart(c *gin.Context) {
	points, err := rc.service.ChartSeries(CallerFrom(c), periodeFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"points": points,
		"count":  len(points),
	})
}

// GetProfitSplit возвращает распределение чистой прибыли периода
// GET /api/v1/reports/profit-split?periode=1
func (rc *ReportController) GetProfitSplit(c *gin.Context) {
	split, err := rc.service.ProfitSplit(CallerFrom(c), periodeFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, split)
}

// GetTopCustomers возвращает рейтинг покупателей по товару
// GET /api/v1/reports/top-customers?item_id=xxx&periode=1&limit=10
func (rc *ReportController) GetTopCustomers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	customers, err := rc.service.TopCustomers(
		CallerFrom(c),
		c.Query("item_id"),
		periodeFrom(c),
		limit,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"count":     len(customers),
	})
}
