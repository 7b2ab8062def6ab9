package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseEntry представляет запись книги расходов
// Ведется внешним модулем, ядро только читает ее при расчете чистой прибыли
type ExpenseEntry struct {
	ID           string          `json:"id" gorm:"type:uuid;primaryKey"`
	Date         time.Time       `json:"date" gorm:"not null;index"`
	Description  string          `json:"description" gorm:"type:varchar(255)"`
	Quantity     int             `json:"quantity" gorm:"not null;default:1"`
	UnitPrice    decimal.Decimal `json:"unit_price" gorm:"type:decimal(15,2);not null"`
	Total        decimal.Decimal `json:"total" gorm:"type:decimal(15,2);not null"`
	BusinessUnit BusinessUnit    `json:"business_unit" gorm:"type:varchar(10);not null;index"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (ExpenseEntry) TableName() string {
	return "expense_entries"
}

// BeforeCreate генерирует UUID
func (e *ExpenseEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
