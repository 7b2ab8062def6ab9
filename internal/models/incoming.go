package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IncomingRecord представляет приход товара (закупку), всегда одна позиция
type IncomingRecord struct {
	ID             string          `json:"id" gorm:"type:uuid;primaryKey"`
	InvoiceNumber  string          `json:"invoice_number" gorm:"type:varchar(100);not null;uniqueIndex"`
	DeliveryNumber string          `json:"delivery_number" gorm:"type:varchar(100);not null;uniqueIndex"`
	ItemID         string          `json:"item_id" gorm:"type:uuid;not null;index"`
	Item           *Item           `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	ReceivedDate   time.Time       `json:"received_date" gorm:"not null;index"`
	DueDate        time.Time       `json:"due_date" gorm:"not null"` // ReceivedDate + срок оплаты из конфигурации
	Quantity       int             `json:"quantity" gorm:"not null"`
	UnitCost       decimal.Decimal `json:"unit_cost" gorm:"type:decimal(15,2);not null"`
	ShippingCost   decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(15,2);not null"`
	TotalCost      decimal.Decimal `json:"total_cost" gorm:"type:decimal(15,2);not null"` // Quantity*UnitCost + ShippingCost
	PaymentStatus  PaymentStatus   `json:"payment_status" gorm:"type:varchar(10);not null;index"`
	Note           string          `json:"note" gorm:"type:text"`
	BusinessUnit   BusinessUnit    `json:"business_unit" gorm:"type:varchar(10);not null;index"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (IncomingRecord) TableName() string {
	return "incoming_records"
}

// BeforeCreate генерирует UUID
func (r *IncomingRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
