package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate выполняет миграции всех таблиц ядра
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Item{},
		&Customer{},
		&OutgoingTransaction{},
		&OutgoingLine{},
		&IncomingRecord{},
		&ExpenseEntry{},
		&DocumentCounter{},
	); err != nil {
		log.Printf("❌ AutoMigrate основных таблиц: %v", err)
		return err
	}

	// Журнал аудита мигрируем отдельно: его отсутствие не должно блокировать старт
	if err := db.AutoMigrate(&AuditRecord{}); err != nil {
		log.Printf("⚠️ AutoMigrate журнала аудита: %v (продолжаем без него)", err)
	}

	return nil
}
