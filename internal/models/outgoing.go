package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OutgoingTransaction представляет продажу (расходную накладную) с 1..N строками
// Итоговые суммы денормализованы в заголовке и пересчитываются при каждой записи
type OutgoingTransaction struct {
	ID              string          `json:"id" gorm:"type:uuid;primaryKey"`
	InvoiceNumber   string          `json:"invoice_number" gorm:"type:varchar(100);not null;uniqueIndex"`
	DeliveryNumber  string          `json:"delivery_number" gorm:"type:varchar(100);not null;uniqueIndex"`
	CustomerID      string          `json:"customer_id" gorm:"type:uuid;not null;index"`
	Customer        *Customer       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Date            time.Time       `json:"date" gorm:"not null;index"`
	DueDate         time.Time       `json:"due_date" gorm:"not null"` // Date + срок оплаты из конфигурации
	ShippingCost    decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(15,2);not null"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(10);not null;index"`
	PoNumber        string          `json:"po_number" gorm:"type:varchar(100)"` // Номер заказа покупателя (опционально)
	TotalRevenue    decimal.Decimal `json:"total_revenue" gorm:"type:decimal(15,2);not null"`
	TotalCost       decimal.Decimal `json:"total_cost" gorm:"type:decimal(15,2);not null"`
	GrossProfit     decimal.Decimal `json:"gross_profit" gorm:"type:decimal(15,2);not null"`
	Fee             decimal.Decimal `json:"fee" gorm:"type:decimal(15,2);not null"` // Комиссия, процент от выручки
	NetProfit       decimal.Decimal `json:"net_profit" gorm:"type:decimal(15,2);not null"`
	BusinessUnit    BusinessUnit    `json:"business_unit" gorm:"type:varchar(10);not null;index"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`

	Lines []OutgoingLine `json:"lines" gorm:"foreignKey:TransactionID"`
}

// TableName указывает имя таблицы
func (OutgoingTransaction) TableName() string {
	return "outgoing_transactions"
}

// BeforeCreate генерирует UUID
func (t *OutgoingTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// OutgoingLine представляет строку продажи
// Цена и себестоимость фиксируются в момент продажи, последующие изменения
// карточки товара НЕ влияют на уже записанные строки
type OutgoingLine struct {
	ID              string          `json:"id" gorm:"type:uuid;primaryKey"`
	TransactionID   string          `json:"transaction_id" gorm:"type:uuid;not null;index"`
	ItemID          string          `json:"item_id" gorm:"type:uuid;not null;index"`
	Item            *Item           `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	UnitPrice       decimal.Decimal `json:"unit_price" gorm:"type:decimal(15,2);not null"` // Снапшот цены продажи
	CostBasis       decimal.Decimal `json:"cost_basis" gorm:"type:decimal(15,2);not null"` // Снапшот себестоимости
	SubtotalRevenue decimal.Decimal `json:"subtotal_revenue" gorm:"type:decimal(15,2);not null"`
	SubtotalCost    decimal.Decimal `json:"subtotal_cost" gorm:"type:decimal(15,2);not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы
func (OutgoingLine) TableName() string {
	return "outgoing_lines"
}

// BeforeCreate генерирует UUID
func (l *OutgoingLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
