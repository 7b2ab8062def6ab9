package services

import "torgplus/server/internal/models"

// Caller представляет идентичность вызывающего, разрешенную внешним шлюзом
// Передается в каждую операцию ядра для проверки подразделения и атрибуции аудита
type Caller struct {
	Actor  string              // Логин/идентификатор пользователя
	Unit   models.BusinessUnit // Подразделение, от имени которого работает пользователь
	Origin string              // IP или иной источник запроса
}

// Validate проверяет заполненность идентичности
func (c Caller) Validate() error {
	if c.Actor == "" {
		return &ValidationError{Field: "actor", Reason: "не задан"}
	}
	if !c.Unit.IsValid() {
		return &ValidationError{Field: "business_unit", Reason: "неизвестное подразделение"}
	}
	return nil
}
