package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"torgplus/server/internal/models"
)

// StockLedger - единственная точка изменения остатков товара
// Строка items в БД является источником истины, любое изменение проходит
// через ApplyDelta под блокировкой строки внутри транзакции вызывающего
type StockLedger struct{}

// NewStockLedger создает новый сервис остатков
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// ApplyDelta применяет знаковое изменение остатка к товару
// Возвращает товар с уже обновленным Stock. Отклоняет операцию, если остаток
// ушел бы в минус. Блокировка FOR UPDATE сериализует параллельных писателей
func (s *StockLedger) ApplyDelta(tx *gorm.DB, itemID string, unit models.BusinessUnit, delta int) (*models.Item, error) {
	item, err := s.lockItem(tx, itemID, unit)
	if err != nil {
		return nil, err
	}

	if delta == 0 {
		return item, nil
	}

	newQty := item.Stock + delta
	if newQty < 0 {
		return nil, fmt.Errorf("%w: товар %q, остаток %d, запрошено %d",
			ErrInsufficientStock, item.Name, item.Stock, -delta)
	}

	if err := tx.Model(&models.Item{}).
		Where("id = ?", item.ID).
		Update("stock", newQty).Error; err != nil {
		return nil, fmt.Errorf("обновление остатка товара %s: %w", item.ID, err)
	}
	item.Stock = newQty
	return item, nil
}

// Get читает товар под блокировкой строки без изменения остатка
// Используется для снапшота себестоимости, когда чистая разница по товару нулевая
func (s *StockLedger) Get(tx *gorm.DB, itemID string, unit models.BusinessUnit) (*models.Item, error) {
	return s.lockItem(tx, itemID, unit)
}

// lockItem читает товар под блокировкой строки с проверкой подразделения
func (s *StockLedger) lockItem(tx *gorm.DB, itemID string, unit models.BusinessUnit) (*models.Item, error) {
	var item models.Item
	err := rowLock(tx).First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: товар %s", ErrNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("чтение товара %s: %w", itemID, err)
	}
	if item.BusinessUnit != unit {
		return nil, fmt.Errorf("%w: товар %s принадлежит подразделению %s", ErrUnauthorized, itemID, item.BusinessUnit)
	}
	return &item, nil
}
