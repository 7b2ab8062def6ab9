package models

// BusinessUnit представляет подразделение компании (тег арендатора)
// Все строки в БД помечены этим тегом, каждый запрос обязан фильтровать по нему
type BusinessUnit string

const (
	UnitRetail    BusinessUnit = "RTL" // Розничное подразделение
	UnitWholesale BusinessUnit = "WHS" // Оптовое подразделение
)

// IsValid проверяет, что подразделение известно системе
func (u BusinessUnit) IsValid() bool {
	return u == UnitRetail || u == UnitWholesale
}

// PaymentStatus представляет статус оплаты документа
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "PAID"   // Оплачено
	PaymentStatusUnpaid PaymentStatus = "UNPAID" // Не оплачено
)

// IsValid проверяет корректность статуса оплаты
func (p PaymentStatus) IsValid() bool {
	return p == PaymentStatusPaid || p == PaymentStatusUnpaid
}
