package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentKind представляет тип нумеруемого документа
type DocumentKind string

const (
	DocKindOutgoingInvoice  DocumentKind = "INV" // Счет продажи
	DocKindOutgoingDelivery DocumentKind = "DO"  // Расходная накладная
	DocKindIncomingInvoice  DocumentKind = "IN"  // Счет закупки
	DocKindIncomingDelivery DocumentKind = "DN"  // Приходная накладная
)

// DocumentCounter хранит последний выданный номер в рамках (тип, подразделение, период)
// Инкремент выполняется только под блокировкой строки, уникальный индекс
// по тройке гарантирует единственность счетчика
type DocumentCounter struct {
	ID           string       `json:"id" gorm:"type:uuid;primaryKey"`
	Kind         DocumentKind `json:"kind" gorm:"type:varchar(10);not null;uniqueIndex:idx_counter_scope,priority:1"`
	BusinessUnit BusinessUnit `json:"business_unit" gorm:"type:varchar(10);not null;uniqueIndex:idx_counter_scope,priority:2"`
	Period       string       `json:"period" gorm:"type:varchar(7);not null;uniqueIndex:idx_counter_scope,priority:3"` // "YYYY-MM"
	LastSeq      int          `json:"last_seq" gorm:"not null;default:0"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы
func (DocumentCounter) TableName() string {
	return "document_counters"
}

// BeforeCreate генерирует UUID
func (d *DocumentCounter) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
