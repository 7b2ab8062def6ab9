package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"torgplus/server/internal/models"
)

// IncomingService управляет приходами товара (закупками)
// Зеркало OutgoingService для одной позиции: создание добавляет остаток,
// обновление применяет разницу количеств, удаление забирает остаток обратно
type IncomingService struct {
	db        *gorm.DB
	numbering *NumberingService
	ledger    *StockLedger
	audit     *AuditService
	rules     FinanceRules
}

// NewIncomingService создает новый сервис приходов
func NewIncomingService(db *gorm.DB, numbering *NumberingService, ledger *StockLedger, audit *AuditService, rules FinanceRules) *IncomingService {
	return &IncomingService{
		db:        db,
		numbering: numbering,
		ledger:    ledger,
		audit:     audit,
		rules:     rules,
	}
}

// IncomingInput - входные данные создания/обновления прихода
type IncomingInput struct {
	ItemID        string
	ReceivedDate  time.Time
	Quantity      int
	UnitCost      decimal.Decimal
	ShippingCost  decimal.Decimal
	PaymentStatus models.PaymentStatus
	Note          string
}

// validate отклоняет некорректный ввод до любых изменений в БД
func (in *IncomingInput) validate() error {
	if in.ItemID == "" {
		return &ValidationError{Field: "item_id", Reason: "не задан"}
	}
	if in.ReceivedDate.IsZero() {
		return &ValidationError{Field: "received_date", Reason: "не задана"}
	}
	if in.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "должно быть больше нуля"}
	}
	if in.UnitCost.IsNegative() {
		return &ValidationError{Field: "unit_cost", Reason: "не может быть отрицательной"}
	}
	if in.ShippingCost.IsNegative() {
		return &ValidationError{Field: "shipping_cost", Reason: "не может быть отрицательной"}
	}
	if !in.PaymentStatus.IsValid() {
		return &ValidationError{Field: "payment_status", Reason: "допустимы PAID и UNPAID"}
	}
	return nil
}

// totalCost считает полную стоимость прихода
func (in *IncomingInput) totalCost() decimal.Decimal {
	return decimal.NewFromInt(int64(in.Quantity)).Mul(in.UnitCost).Add(in.ShippingCost).Round(2)
}

// Create создает приход и добавляет количество на склад
func (s *IncomingService) Create(caller Caller, in IncomingInput) (*models.IncomingRecord, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created models.IncomingRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.ApplyDelta(tx, in.ItemID, caller.Unit, in.Quantity); err != nil {
			return err
		}

		invoiceNo, err := s.numbering.Next(tx, models.DocKindIncomingInvoice, caller.Unit, in.ReceivedDate)
		if err != nil {
			return err
		}
		deliveryNo, err := s.numbering.Next(tx, models.DocKindIncomingDelivery, caller.Unit, in.ReceivedDate)
		if err != nil {
			return err
		}

		created = models.IncomingRecord{
			InvoiceNumber:  invoiceNo,
			DeliveryNumber: deliveryNo,
			ItemID:         in.ItemID,
			ReceivedDate:   in.ReceivedDate,
			DueDate:        in.ReceivedDate.AddDate(0, 0, s.rules.PaymentTermDays),
			Quantity:       in.Quantity,
			UnitCost:       in.UnitCost,
			ShippingCost:   in.ShippingCost,
			TotalCost:      in.totalCost(),
			PaymentStatus:  in.PaymentStatus,
			Note:           in.Note,
			BusinessUnit:   caller.Unit,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("запись прихода: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(caller, models.AuditActionCreate, "incoming_record", created.ID, nil, created)
	return &created, nil
}

// Update пересчитывает приход, применяя к складу только разницу количеств
// Если товар прихода сменился, старый товар теряет старое количество,
// новый получает новое; уменьшение ниже уже проданного остатка отклоняется
func (s *IncomingService) Update(caller Caller, id string, in IncomingInput) (*models.IncomingRecord, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var before, updated models.IncomingRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.lockRecord(tx, id, caller.Unit)
		if err != nil {
			return err
		}
		before = *existing

		if in.ItemID == existing.ItemID {
			delta := in.Quantity - existing.Quantity
			if _, err := s.ledger.ApplyDelta(tx, in.ItemID, caller.Unit, delta); err != nil {
				return err
			}
		} else {
			if _, err := s.ledger.ApplyDelta(tx, existing.ItemID, caller.Unit, -existing.Quantity); err != nil {
				return err
			}
			if _, err := s.ledger.ApplyDelta(tx, in.ItemID, caller.Unit, in.Quantity); err != nil {
				return err
			}
		}

		// Номера документов сохраняются
		existing.ItemID = in.ItemID
		existing.ReceivedDate = in.ReceivedDate
		existing.DueDate = in.ReceivedDate.AddDate(0, 0, s.rules.PaymentTermDays)
		existing.Quantity = in.Quantity
		existing.UnitCost = in.UnitCost
		existing.ShippingCost = in.ShippingCost
		existing.TotalCost = in.totalCost()
		existing.PaymentStatus = in.PaymentStatus
		existing.Note = in.Note

		if err := tx.Save(existing).Error; err != nil {
			return fmt.Errorf("обновление прихода: %w", err)
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(caller, models.AuditActionUpdate, "incoming_record", updated.ID, before, updated)
	return &updated, nil
}

// Delete удаляет приход и забирает его количество со склада
// Если часть товара уже продана, удаление отклоняется как дефицит остатка
func (s *IncomingService) Delete(caller Caller, id string) error {
	if err := caller.Validate(); err != nil {
		return err
	}

	var removed models.IncomingRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.lockRecord(tx, id, caller.Unit)
		if err != nil {
			return err
		}
		removed = *existing

		if _, err := s.ledger.ApplyDelta(tx, existing.ItemID, caller.Unit, -existing.Quantity); err != nil {
			return err
		}
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("удаление прихода: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(caller, models.AuditActionDelete, "incoming_record", removed.ID, removed, nil)
	return nil
}

// GetByID возвращает приход по ID
func (s *IncomingService) GetByID(caller Caller, id string) (*models.IncomingRecord, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	var record models.IncomingRecord
	err := s.db.Preload("Item").First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: приход %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if record.BusinessUnit != caller.Unit {
		return nil, fmt.Errorf("%w: приход %s принадлежит подразделению %s", ErrUnauthorized, id, record.BusinessUnit)
	}
	return &record, nil
}

// List возвращает приходы подразделения, новые сверху
func (s *IncomingService) List(caller Caller, limit int) ([]models.IncomingRecord, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var records []models.IncomingRecord
	err := s.db.Preload("Item").
		Where("business_unit = ?", caller.Unit).
		Order("received_date DESC, created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// lockRecord читает приход под блокировкой строки с проверкой подразделения
func (s *IncomingService) lockRecord(tx *gorm.DB, id string, unit models.BusinessUnit) (*models.IncomingRecord, error) {
	var record models.IncomingRecord
	err := rowLock(tx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: приход %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("чтение прихода %s: %w", id, err)
	}
	if record.BusinessUnit != unit {
		return nil, fmt.Errorf("%w: приход %s принадлежит подразделению %s", ErrUnauthorized, id, record.BusinessUnit)
	}
	return &record, nil
}
