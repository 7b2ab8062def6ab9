package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"torgplus/server/internal/models"
)

// Максимальное число попыток сериализовать инкремент счетчика
const maxNumberingAttempts = 3

// NumberingService выдает человекочитаемые номера документов
// Формат: {kind}/{seq:03}/{month}/{unit}/{day}/{year}, например INV/007/08/RTL/29/2026
// Номера уникальны и строго возрастают в рамках (тип, подразделение, период)
type NumberingService struct{}

// NewNumberingService создает новый сервис нумерации
func NewNumberingService() *NumberingService {
	return &NumberingService{}
}

// Next выдает следующий номер документа внутри транзакции вызывающего
// Счетчик блокируется FOR UPDATE, поэтому два параллельных вызова для одной
// области никогда не получат одинаковый номер. Номер считается "истраченным"
// только после коммита внешней транзакции, откат возвращает его в счетчик
func (s *NumberingService) Next(tx *gorm.DB, kind models.DocumentKind, unit models.BusinessUnit, date time.Time) (string, error) {
	period := date.Format("2006-01")

	var lastErr error
	for attempt := 0; attempt < maxNumberingAttempts; attempt++ {
		// Каждая попытка выполняется в SAVEPOINT: Postgres после ошибки
		// уникального индекса отклоняет любые запросы до отката, поэтому
		// неудачная попытка откатывается сама, не обрывая транзакцию вызывающего
		var seq int
		err := tx.Transaction(func(ptx *gorm.DB) error {
			var err error
			seq, err = s.increment(ptx, kind, unit, period)
			return err
		})
		if err == nil {
			return fmt.Sprintf("%s/%03d/%02d/%s/%02d/%d",
				kind, seq, int(date.Month()), unit, date.Day(), date.Year()), nil
		}
		if !isDuplicateKey(err) {
			return "", err
		}
		// Два вызова одновременно создали счетчик для новой области,
		// проигравший повторяет попытку уже с блокировкой существующей строки
		lastErr = err
	}
	return "", fmt.Errorf("%w: %v", ErrNumberingConflict, lastErr)
}

// increment увеличивает счетчик области под блокировкой строки
func (s *NumberingService) increment(tx *gorm.DB, kind models.DocumentKind, unit models.BusinessUnit, period string) (int, error) {
	var counter models.DocumentCounter
	err := rowLock(tx).
		Where("kind = ? AND business_unit = ? AND period = ?", kind, unit, period).
		First(&counter).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.DocumentCounter{
			Kind:         kind,
			BusinessUnit: unit,
			Period:       period,
			LastSeq:      0,
		}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, fmt.Errorf("чтение счетчика %s/%s/%s: %w", kind, unit, period, err)
	}

	counter.LastSeq++
	if err := tx.Model(&models.DocumentCounter{}).
		Where("id = ?", counter.ID).
		Update("last_seq", counter.LastSeq).Error; err != nil {
		return 0, fmt.Errorf("инкремент счетчика %s/%s/%s: %w", kind, unit, period, err)
	}
	return counter.LastSeq, nil
}

// isDuplicateKey распознает нарушение уникального индекса счетчика
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
