package services

import "github.com/shopspring/decimal"

// FinanceRules - бизнес-правила расчета документов, задаются конфигурацией
type FinanceRules struct {
	// FeePercent - комиссия в процентах от выручки продажи
	FeePercent decimal.Decimal
	// PaymentTermDays - срок оплаты: срок платежа = дата документа + столько дней
	PaymentTermDays int
}

// DefaultFinanceRules возвращает правила по умолчанию (комиссия 2.5%, срок 30 дней)
func DefaultFinanceRules() FinanceRules {
	return FinanceRules{
		FeePercent:      decimal.NewFromFloat(2.5),
		PaymentTermDays: 30,
	}
}

// Fee считает комиссию от выручки с округлением до копеек
func (r FinanceRules) Fee(revenue decimal.Decimal) decimal.Decimal {
	return revenue.Mul(r.FeePercent).Div(decimal.NewFromInt(100)).Round(2)
}
