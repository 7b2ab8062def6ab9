package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item представляет товар каталога
// Карточку товара ведет внешний модуль каталога, ядро меняет только остаток Stock
type Item struct {
	ID           string          `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string          `json:"name" gorm:"type:varchar(255);not null"`
	Unit         string          `json:"unit" gorm:"type:varchar(20);default:'pcs'"` // Единица измерения (pcs, box, kg)
	SalePrice    decimal.Decimal `json:"sale_price" gorm:"type:decimal(15,2);not null"`
	CostPrice    decimal.Decimal `json:"cost_price" gorm:"type:decimal(15,2);not null"` // Текущая себестоимость (база для снапшота в строке продажи)
	Stock        int             `json:"stock" gorm:"not null;default:0"`               // Остаток, инвариант: всегда >= 0
	BusinessUnit BusinessUnit    `json:"business_unit" gorm:"type:varchar(10);not null;index"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Item) TableName() string {
	return "items"
}

// BeforeCreate генерирует UUID
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
