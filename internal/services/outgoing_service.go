package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"torgplus/server/internal/models"
)

// OutgoingService управляет продажами (расходными накладными)
// Каждая операция - одна атомарная транзакция БД: нумерация, списание остатков,
// запись заголовка и строк коммитятся или откатываются вместе
type OutgoingService struct {
	db        *gorm.DB
	numbering *NumberingService
	ledger    *StockLedger
	audit     *AuditService
	rules     FinanceRules
}

// NewOutgoingService создает новый сервис продаж
func NewOutgoingService(db *gorm.DB, numbering *NumberingService, ledger *StockLedger, audit *AuditService, rules FinanceRules) *OutgoingService {
	return &OutgoingService{
		db:        db,
		numbering: numbering,
		ledger:    ledger,
		audit:     audit,
		rules:     rules,
	}
}

// OutgoingLineInput - строка продажи на входе операции
type OutgoingLineInput struct {
	ItemID    string
	Quantity  int
	UnitPrice decimal.Decimal
}

// OutgoingInput - входные данные создания/обновления продажи
type OutgoingInput struct {
	CustomerID    string
	Date          time.Time
	ShippingCost  decimal.Decimal
	PaymentStatus models.PaymentStatus
	PoNumber      string
	Lines         []OutgoingLineInput
}

// validate отклоняет некорректный ввод до любых изменений в БД
func (in *OutgoingInput) validate() error {
	if in.CustomerID == "" {
		return &ValidationError{Field: "customer_id", Reason: "не задан"}
	}
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "не задана"}
	}
	if in.ShippingCost.IsNegative() {
		return &ValidationError{Field: "shipping_cost", Reason: "не может быть отрицательной"}
	}
	if !in.PaymentStatus.IsValid() {
		return &ValidationError{Field: "payment_status", Reason: "допустимы PAID и UNPAID"}
	}
	if len(in.Lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "продажа должна содержать хотя бы одну строку"}
	}
	seen := make(map[string]bool, len(in.Lines))
	for i, line := range in.Lines {
		if line.ItemID == "" {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].item_id", i), Reason: "не задан"}
		}
		if line.Quantity <= 0 {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].quantity", i), Reason: "должно быть больше нуля"}
		}
		if line.UnitPrice.IsNegative() {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].unit_price", i), Reason: "не может быть отрицательной"}
		}
		if seen[line.ItemID] {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].item_id", i), Reason: "товар встречается дважды"}
		}
		seen[line.ItemID] = true
	}
	return nil
}

// Create создает продажу: списывает остатки, выдает номера, считает итоги
// Все или ничего: нехватка любого товара откатывает операцию целиком
func (s *OutgoingService) Create(caller Caller, in OutgoingInput) (*models.OutgoingTransaction, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created models.OutgoingTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkCustomer(tx, in.CustomerID, caller.Unit); err != nil {
			return err
		}

		lines, totals, err := s.buildLines(tx, caller.Unit, in.Lines, true)
		if err != nil {
			return err
		}

		invoiceNo, err := s.numbering.Next(tx, models.DocKindOutgoingInvoice, caller.Unit, in.Date)
		if err != nil {
			return err
		}
		deliveryNo, err := s.numbering.Next(tx, models.DocKindOutgoingDelivery, caller.Unit, in.Date)
		if err != nil {
			return err
		}

		created = models.OutgoingTransaction{
			InvoiceNumber:  invoiceNo,
			DeliveryNumber: deliveryNo,
			CustomerID:     in.CustomerID,
			Date:           in.Date,
			DueDate:        in.Date.AddDate(0, 0, s.rules.PaymentTermDays),
			ShippingCost:   in.ShippingCost,
			PaymentStatus:  in.PaymentStatus,
			PoNumber:       in.PoNumber,
			BusinessUnit:   caller.Unit,
		}
		s.applyTotals(&created, totals)

		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("запись продажи: %w", err)
		}
		for i := range lines {
			lines[i].TransactionID = created.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("запись строк продажи: %w", err)
		}
		created.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(caller, models.AuditActionCreate, "outgoing_transaction", created.ID, nil, created)
	return &created, nil
}

// Update заменяет строки продажи и пересчитывает итоги
// Остатки корректируются ЧИСТОЙ разницей между старым и новым набором строк,
// одним применением на товар - промежуточного "отката в ноль" нет, поэтому
// обновление не ловит ложный дефицит остатка
func (s *OutgoingService) Update(caller Caller, id string, in OutgoingInput) (*models.OutgoingTransaction, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var before, updated models.OutgoingTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.lockTransaction(tx, id, caller.Unit)
		if err != nil {
			return err
		}
		before = *existing

		if in.CustomerID != existing.CustomerID {
			if err := s.checkCustomer(tx, in.CustomerID, caller.Unit); err != nil {
				return err
			}
		}

		// Чистая разница остатков: +старое количество, -новое, одним движением
		deltas := make(map[string]int)
		for _, line := range existing.Lines {
			deltas[line.ItemID] += line.Quantity
		}
		for _, line := range in.Lines {
			deltas[line.ItemID] -= line.Quantity
		}
		for itemID, delta := range deltas {
			if _, err := s.ledger.ApplyDelta(tx, itemID, caller.Unit, delta); err != nil {
				return err
			}
		}

		// Остатки уже скорректированы чистой разницей выше, здесь только снапшоты
		lines, totals, err := s.buildLines(tx, caller.Unit, in.Lines, false)
		if err != nil {
			return err
		}

		if err := tx.Where("transaction_id = ?", existing.ID).
			Delete(&models.OutgoingLine{}).Error; err != nil {
			return fmt.Errorf("удаление старых строк: %w", err)
		}
		for i := range lines {
			lines[i].TransactionID = existing.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("запись новых строк: %w", err)
		}

		// Номера документов сохраняются, перегенерация не выполняется
		existing.CustomerID = in.CustomerID
		existing.Date = in.Date
		existing.DueDate = in.Date.AddDate(0, 0, s.rules.PaymentTermDays)
		existing.ShippingCost = in.ShippingCost
		existing.PaymentStatus = in.PaymentStatus
		existing.PoNumber = in.PoNumber
		s.applyTotals(existing, totals)

		if err := tx.Save(existing).Error; err != nil {
			return fmt.Errorf("обновление продажи: %w", err)
		}
		existing.Lines = lines
		updated = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(caller, models.AuditActionUpdate, "outgoing_transaction", updated.ID, before, updated)
	return &updated, nil
}

// Delete удаляет продажу и возвращает списанные остатки на склад
func (s *OutgoingService) Delete(caller Caller, id string) error {
	if err := caller.Validate(); err != nil {
		return err
	}

	var removed models.OutgoingTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.lockTransaction(tx, id, caller.Unit)
		if err != nil {
			return err
		}
		removed = *existing

		for _, line := range existing.Lines {
			if _, err := s.ledger.ApplyDelta(tx, line.ItemID, caller.Unit, line.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Where("transaction_id = ?", existing.ID).
			Delete(&models.OutgoingLine{}).Error; err != nil {
			return fmt.Errorf("удаление строк: %w", err)
		}
		// Заголовок удаляем мягко: выданные номера документов остаются занятыми
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("удаление продажи: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(caller, models.AuditActionDelete, "outgoing_transaction", removed.ID, removed, nil)
	return nil
}

// GetByID возвращает продажу со строками
func (s *OutgoingService) GetByID(caller Caller, id string) (*models.OutgoingTransaction, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	var txn models.OutgoingTransaction
	err := s.db.Preload("Lines").Preload("Customer").
		First(&txn, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: продажа %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if txn.BusinessUnit != caller.Unit {
		return nil, fmt.Errorf("%w: продажа %s принадлежит подразделению %s", ErrUnauthorized, id, txn.BusinessUnit)
	}
	return &txn, nil
}

// List возвращает продажи подразделения, новые сверху
func (s *OutgoingService) List(caller Caller, limit int) ([]models.OutgoingTransaction, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var txns []models.OutgoingTransaction
	err := s.db.Preload("Lines").Preload("Customer").
		Where("business_unit = ?", caller.Unit).
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// lineTotals - промежуточные суммы по строкам
type lineTotals struct {
	revenue decimal.Decimal
	cost    decimal.Decimal
}

// buildLines формирует строки со снапшотами цен, при consume=true заодно
// списывая остатки. Себестоимость читается из карточки товара В МОМЕНТ операции
// и замораживается в строке - дальнейшие изменения карточки не трогают историю
func (s *OutgoingService) buildLines(tx *gorm.DB, unit models.BusinessUnit, inputs []OutgoingLineInput, consume bool) ([]models.OutgoingLine, lineTotals, error) {
	totals := lineTotals{revenue: decimal.Zero, cost: decimal.Zero}
	lines := make([]models.OutgoingLine, 0, len(inputs))

	for _, in := range inputs {
		var item *models.Item
		var err error
		if consume {
			item, err = s.ledger.ApplyDelta(tx, in.ItemID, unit, -in.Quantity)
		} else {
			item, err = s.ledger.Get(tx, in.ItemID, unit)
		}
		if err != nil {
			return nil, totals, err
		}

		qty := decimal.NewFromInt(int64(in.Quantity))
		subtotalRevenue := qty.Mul(in.UnitPrice).Round(2)
		subtotalCost := qty.Mul(item.CostPrice).Round(2)

		lines = append(lines, models.OutgoingLine{
			ItemID:          in.ItemID,
			Quantity:        in.Quantity,
			UnitPrice:       in.UnitPrice,
			CostBasis:       item.CostPrice,
			SubtotalRevenue: subtotalRevenue,
			SubtotalCost:    subtotalCost,
		})
		totals.revenue = totals.revenue.Add(subtotalRevenue)
		totals.cost = totals.cost.Add(subtotalCost)
	}
	return lines, totals, nil
}

// applyTotals пересчитывает денормализованные итоги заголовка
func (s *OutgoingService) applyTotals(txn *models.OutgoingTransaction, totals lineTotals) {
	txn.TotalRevenue = totals.revenue
	txn.TotalCost = totals.cost
	txn.GrossProfit = totals.revenue.Sub(totals.cost)
	txn.Fee = s.rules.Fee(totals.revenue)
	txn.NetProfit = txn.GrossProfit.Sub(txn.Fee).Sub(txn.ShippingCost)
}

// lockTransaction читает продажу со строками под блокировкой заголовка,
// сериализуя параллельные Update/Delete одной и той же продажи
func (s *OutgoingService) lockTransaction(tx *gorm.DB, id string, unit models.BusinessUnit) (*models.OutgoingTransaction, error) {
	var txn models.OutgoingTransaction
	err := rowLock(tx, "outgoing_transactions").
		Preload("Lines").First(&txn, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: продажа %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("чтение продажи %s: %w", id, err)
	}
	if txn.BusinessUnit != unit {
		return nil, fmt.Errorf("%w: продажа %s принадлежит подразделению %s", ErrUnauthorized, id, txn.BusinessUnit)
	}
	return &txn, nil
}

// checkCustomer проверяет существование покупателя и совпадение подразделения
func (s *OutgoingService) checkCustomer(tx *gorm.DB, customerID string, unit models.BusinessUnit) error {
	var customer models.Customer
	err := tx.First(&customer, "id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: покупатель %s", ErrNotFound, customerID)
	}
	if err != nil {
		return fmt.Errorf("чтение покупателя %s: %w", customerID, err)
	}
	if customer.BusinessUnit != unit {
		return fmt.Errorf("%w: покупатель %s принадлежит подразделению %s", ErrUnauthorized, customerID, customer.BusinessUnit)
	}
	return nil
}
