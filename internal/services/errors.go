package services

import (
	"errors"
	"fmt"
)

// Типизированные ошибки ядра. Контроллеры маппят их на HTTP статусы,
// все ошибки мутаций гарантируют отсутствие частичного эффекта
var (
	// ErrNotFound возвращается, если сущность по ID не найдена
	ErrNotFound = errors.New("запись не найдена")
	// ErrInsufficientStock возвращается, если операция увела бы остаток в минус
	ErrInsufficientStock = errors.New("недостаточно товара на складе")
	// ErrNumberingConflict возвращается, если счетчик номеров не удалось
	// сериализовать за отведенное число попыток
	ErrNumberingConflict = errors.New("конфликт нумерации документов")
	// ErrUnauthorized возвращается при несовпадении подразделения вызывающего и ресурса
	ErrUnauthorized = errors.New("операция запрещена для этого подразделения")
)

// ValidationError описывает некорректное входное значение
// Отклоняется до любых изменений в БД
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("неверное значение %s: %s", e.Field, e.Reason)
}

// IsValidationError проверяет, является ли ошибка ошибкой валидации
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
