package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer представляет покупателя
// Карточку ведет внешний модуль, ядро использует покупателя как ссылку в продажах
type Customer struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null"`
	Address      string         `json:"address" gorm:"type:text"`
	Phone        string         `json:"phone" gorm:"type:varchar(50)"`
	BusinessUnit BusinessUnit   `json:"business_unit" gorm:"type:varchar(10);not null;index"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (Customer) TableName() string {
	return "customers"
}

// BeforeCreate генерирует UUID
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
