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

// OutgoingController управляет API endpoints продаж
type OutgoingController struct {
	service *services.OutgoingService
}

// NewOutgoingController создает новый контроллер продаж
func NewOutgoingController(service *services.OutgoingService) *OutgoingController {
	return &OutgoingController{service: service}
}

// outgoingLineRequest - строка продажи в теле запроса
type outgoingLineRequest struct {
	ItemID    string          `json:"item_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// outgoingRequest - тело запроса создания/обновления продажи
type outgoingRequest struct {
	CustomerID    string                `json:"customer_id" binding:"required"`
	Date          string                `json:"date" binding:"required"` // "2006-01-02"
	ShippingCost  decimal.Decimal       `json:"shipping_cost"`
	PaymentStatus string                `json:"payment_status" binding:"required"`
	PoNumber      string                `json:"po_number"`
	Lines         []outgoingLineRequest `json:"lines" binding:"required"`
}

// toInput переводит тело запроса во вход сервиса
func (r *outgoingRequest) toInput() (services.OutgoingInput, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return services.OutgoingInput{}, &services.ValidationError{
			Field: "date", Reason: "ожидается формат YYYY-MM-DD",
		}
	}
	lines := make([]services.OutgoingLineInput, len(r.Lines))
	for i, line := range r.Lines {
		lines[i] = services.OutgoingLineInput{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return services.OutgoingInput{
		CustomerID:    r.CustomerID,
		Date:          date,
		ShippingCost:  r.ShippingCost,
		PaymentStatus: models.PaymentStatus(r.PaymentStatus),
		PoNumber:      r.PoNumber,
		Lines:         lines,
	}, nil
}

// Create создает продажу
// POST /api/v1/outgoing
func (oc *OutgoingController) Create(c *gin.Context) {
	var req outgoingRequest
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
	created, err := oc.service.Create(caller, input)
	if err != nil {
		respondError(c, err)
		return
	}

	EventsHub.NotifyMutation(MutationEvent{
		Entity:       "outgoing_transaction",
		Action:       models.AuditActionCreate,
		EntityID:     created.ID,
		BusinessUnit: caller.Unit,
	})
	c.JSON(http.StatusCreated, created)
}

// Update обновляет продажу
// PUT /api/v1/outgoing/:id
func (oc *OutgoingController) Update(c *gin.Context) {
	var req outgoingRequest
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
	updated, err := oc.service.Update(caller, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}

	EventsHub.NotifyMutation(MutationEvent{
		Entity:       "outgoing_transaction",
		Action:       models.AuditActionUpdate,
		EntityID:     updated.ID,
		BusinessUnit: caller.Unit,
	})
	c.JSON(http.StatusOK, updated)
}

// Delete удаляет продажу и возвращает остатки на склад
// DELETE /api/v1/outgoing/:id
func (oc *OutgoingController) Delete(c *gin.Context) {
	caller := CallerFrom(c)
	id := c.Param("id")
	if err := oc.service.Delete(caller, id); err != nil {
		respondError(c, err)
		return
	}

	EventsHub.NotifyMutation(MutationEvent{
		Entity:       "outgoing_transaction",
		Action:       models.AuditActionDelete,
		EntityID:     id,
		BusinessUnit: caller.Unit,
	})
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Get возвращает продажу по ID
// GET /api/v1/outgoing/:id
func (oc *OutgoingController) Get(c *gin.Context) {
	txn, err := oc.service.GetByID(CallerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// List возвращает продажи подразделения
// GET /api/v1/outgoing?limit=100
func (oc *OutgoingController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	txns, err := oc.service.List(CallerFrom(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": txns,
		"count":        len(txns),
	})
}
