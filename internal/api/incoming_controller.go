package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"torgplus/server/internal/models"
	"torgplus/server/internal/services"
)

// IncomingController управляет API endpoints приходов товара
type IncomingController struct {
	service *services.IncomingService
}

// NewIncomingController создает новый контроллер приходов
func NewIncomingController(service *services.IncomingService) *IncomingController {
	return &IncomingController{service: service}
}

// incomingRequest - тело запроса создания/обновления прихода
type incomingRequest struct {
	ItemID        string          `json:"item_id" binding:"required"`
	ReceivedDate  string          `json:"received_date" binding:"required"` // "2006-01-02"
	Quantity      int             `json:"quantity" binding:"required"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	PaymentStatus string          `json:"payment_status" binding:"required"`
	Note          string          `json:"note"`
}

// toInput переводит тело запроса во вход сервиса
func (r *incomingRequest) toInput() (services.IncomingInput, error) {
	date, err := time.Parse("2006-01-02", r.ReceivedDate)
	if err != nil {
		return services.IncomingInput{}, &services.ValidationError{
			Field: "received_date", Reason: "ожидается формат YYYY-MM-DD",
		}
	}
	return services.IncomingInput{
		ItemID:        r.ItemID,
		ReceivedDate:  date,
		Quantity:      r.Quantity,
		UnitCost:      r.UnitCost,
		ShippingCost:  r.ShippingCost,
		PaymentStatus: models.PaymentStatus(r.PaymentStatus),
		Note:          r.Note,
	}, nil
}

// Create создает приход
// POST /api/v1/incoming
func (ic *IncomingController) Create(c *gin.Context) {
	var req incomingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	caller := CallerFrom(c)
	created, err := ic.service.Create(caller, input)
	if err != nil {
		respondError(c, err)
		return
	}

	EventsHub.NotifyMutation(MutationEvent{
		Entity:       "incoming_record",
		Action:       models.AuditActionCreate,
		EntityID:     created.ID,
		BusinessUnit: caller.Unit,
	})
	c.JSON(http.StatusCreated, created)
}

// Update обновляет приход
// PUT /api/v1/incoming/:id
func (ic *IncomingController) Update(c *gin.Context) {
	var req incomingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	caller := CallerFrom(c)
	updated, err := ic.service.Update(caller, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}

	EventsHub.NotifyMutation(MutationEvent{
		Entity:       "incoming_record",
		Action:       models.AuditActionUpdate,
		EntityID:     updated.ID,
		BusinessUnit: caller.Unit,
	})
	c.JSON(http.StatusOK, updated)
}

// Delete удаляет приход
// DELETE /api/v1/incoming/:id
func (ic *IncomingController) Delete(c *gin.Context) {
	caller := CallerFrom(c)
	id := c.Param("id")
	if err := ic.service.Delete(caller, id); err != nil {
		respondError(c, err)
		return
	}

	EventsHub.NotifyMutation(MutationEvent{
		Entity:       "incoming_record",
		Action:       models.AuditActionDelete,
		EntityID:     id,
		BusinessUnit: caller.Unit,
	})
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Get возвращает приход по ID
// GET /api/v1/incoming/:id
func (ic *IncomingController) Get(c *gin.Context) {
	record, err := ic.service.GetByID(CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// List возвращает приходы подразделения
// GET /api/v1/incoming?limit=100
func (ic *IncomingController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	records, err := ic.service.List(CallerFrom(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}
