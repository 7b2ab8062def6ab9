package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction представляет вид операции в журнале аудита
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// AuditRecord представляет запись журнала аудита
// Журнал append-only: одна запись на каждую успешную мутацию,
// снимки до/после хранятся как JSON
type AuditRecord struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	Actor        string         `json:"actor" gorm:"type:varchar(255);not null;index"` // Кто выполнил операцию
	Action       AuditAction    `json:"action" gorm:"type:varchar(20);not null;index"`
	EntityType   string         `json:"entity_type" gorm:"type:varchar(50);not null;index"` // "outgoing_transaction", "incoming_record"
	EntityID     string         `json:"entity_id" gorm:"type:uuid;not null;index"`
	Before       string         `json:"before" gorm:"type:text"` // JSON снимок до операции (пусто для CREATE)
	After        string         `json:"after" gorm:"type:text"`  // JSON снимок после операции (пусто для DELETE)
	Origin       string         `json:"origin" gorm:"type:varchar(100)"` // IP/источник запроса
	BusinessUnit BusinessUnit   `json:"business_unit" gorm:"type:varchar(10);not null;index"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName указывает имя таблицы
func (AuditRecord) TableName() string {
	return "audit_records"
}

// BeforeCreate генерирует UUID
func (a *AuditRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
