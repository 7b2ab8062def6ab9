package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"torgplus/server/internal/models"
)

// newReportService создает сервис отчетов с замороженным "сейчас"
func newReportService(db *gorm.DB, nowStr string, t *testing.T) *ReportService {
	t.Helper()
	rs := NewReportService(db, DefaultProfitSplit())
	frozen := mustDate(t, nowStr)
	rs.now = func() time.Time { return frozen }
	return rs
}

func TestPercentChange(t *testing.T) {
	change := percentChange(dec("200000"), dec("100000"))
	require.False(t, change.Undefined)
	requireDecimal(t, "100", change.Value)

	change = percentChange(dec("50"), dec("100"))
	requireDecimal(t, "-50", change.Value)

	// Нулевая база: 0 -> 0 это ноль, 0 -> X не определено
	change = percentChange(dec("0"), dec("0"))
	require.False(t, change.Undefined)
	requireDecimal(t, "0", change.Value)

	change = percentChange(dec("500"), dec("0"))
	require.True(t, change.Undefined)
}

func TestResolvePeriode(t *testing.T) {
	db := setupTestDB(t)
	rs := newReportService(db, "2026-03-15", t)

	start, end, err := rs.ResolvePeriode(1)
	require.NoError(t, err)
	require.Equal(t, mustDate(t, "2026-03-01"), start)
	require.Equal(t, mustDate(t, "2026-04-01"), end)

	start, end, err = rs.ResolvePeriode(3)
	require.NoError(t, err)
	require.Equal(t, mustDate(t, "2026-01-01"), start)
	require.Equal(t, mustDate(t, "2026-02-01"), end)

	_, _, err = rs.ResolvePeriode(0)
	require.True(t, IsValidationError(err))
}

func TestStatsPaidOnlyRecognition(t *testing.T) {
	db := setupTestDB(t)
	rs := newReportService(db, "2026-03-15", t)
	caller := testCaller(models.UnitRetail)
	customer := seedCustomer(t, db, "ООО Вектор", models.UnitRetail)

	// Текущий месяц: оплаченная продажа учитывается
	seedPaidTxn(t, db, models.UnitRetail, customer.ID, mustDate(t, "2026-03-05"),
		models.PaymentStatusPaid, "30000", "21000", "750", nil)
	// Неоплаченная - нет
	seedPaidTxn(t, db, models.UnitRetail, customer.ID, mustDate(t, "2026-03-06"),
		models.PaymentStatusUnpaid, "99999", "50000", "100", nil)
	// Чужое подразделение - нет
	seedPaidTxn(t, db, models.UnitWholesale, customer.ID, mustDate(t, "2026-03-07"),
		models.PaymentStatusPaid, "77777", "50000", "100", nil)
	// Прошлый месяц
	seedPaidTxn(t, db, models.UnitRetail, customer.ID, mustDate(t, "2026-02-10"),
		models.PaymentStatusPaid, "15000", "10500", "375", nil)

	seedExpense(t, db, models.UnitRetail, mustDate(t, "2026-03-08"), "1000")

	stats, err := rs.Stats(caller, 1)
	require.NoError(t, err)

	requireDecimal(t, "30000", stats.Revenue.Current)
	requireDecimal(t, "15000", stats.Revenue.Previous)
	requireDecimal(t, "100", stats.Revenue.Change.Value)

	requireDecimal(t, "21000", stats.Cost.Current)
	requireDecimal(t, "9000", stats.GrossProfit.Current)
	requireDecimal(t, "750", stats.FeeTotal.Current)
	requireDecimal(t, "1000", stats.Expenses.Current)

	// Чистая = валовая - расходы - комиссия
	requireDecimal(t, "7250", stats.NetProfit.Current)
	requireDecimal(t, "4125", stats.NetProfit.Previous) // 4500 - 0 - 375

	// Расходов в феврале не было: дельта не определена
	require.True(t, stats.Expenses.Change.Undefined)
}

func TestChartSeriesDailyPoints(t *testing.T) {
	db := setupTestDB(t)
	rs := newReportService(db, "2026-03-15", t)
	caller := testCaller(models.UnitRetail)
	customer := seedCustomer(t, db, "ООО Вектор", models.UnitRetail)

	seedPaidTxn(t, db, models.UnitRetail, customer.ID, mustDate(t, "2026-03-05"),
		models.PaymentStatusPaid, "10000", "7000", "250", nil)
	seedPaidTxn(t, db, models.UnitRetail, customer.ID, mustDate(t, "2026-03-05"),
		models.PaymentStatusPaid, "5000", "3500", "125", nil)
	seedExpense(t, db, models.UnitRetail, mustDate(t, "2026-03-20"), "800")

	points, err := rs.ChartSeries(caller, 1)
	require.NoError(t, err)

	// По одной точке на каждый день месяца, строго по возрастанию
	require.Len(t, points, 31)
	require.Equal(t, "2026-03-01", points[0].Label)
	require.Equal(t, "2026-03-31", points[30].Label)
	for i := 1; i < len(points); i++ {
		require.Greater(t, points[i].Label, points[i-1].Label)
	}

	requireDecimal(t, "15000", points[4].Revenue) // 5 марта, две продажи
	requireDecimal(t, "0", points[4].Expense)
	requireDecimal(t, "800", points[19].Expense) // 20 марта
	requireDecimal(t, "0", points[0].Revenue)
}

func TestProfitSplitReport(t *testing.T) {
	db := setupTestDB(t)
	rs := newReportService(db, "2026-03-15", t)
	caller := testCaller(models.UnitRetail)
	customer := seedCustomer(t, db, "ООО Вектор", models.UnitRetail)

	seedPaidTxn(t, db, models.UnitRetail, customer.ID, mustDate(t, "2026-03-05"),
		models.PaymentStatusPaid, "30000", "21000", "750", nil)
	seedExpense(t, db, models.UnitRetail, mustDate(t, "2026-03-08"), "1000")

	result, err := rs.ProfitSplit(caller, 1)
	require.NoError(t, err)
	requireDecimal(t, "7250", result.NetProfit)
	require.Len(t, result.Shares, 4)

	requireDecimal(t, "2175", result.Shares[0].Amount) // 30%
	requireDecimal(t, "2175", result.Shares[1].Amount) // 30%
	requireDecimal(t, "1812.50", result.Shares[2].Amount) // 25%
	requireDecimal(t, "1087.50", result.Shares[3].Amount) // остаток

	sum := result.Shares[0].Amount
	for _, share := range result.Shares[1:] {
		sum = sum.Add(share.Amount)
	}
	require.True(t, sum.Equal(result.NetProfit))
}

func TestTopCustomersRanking(t *testing.T) {
	db := setupTestDB(t)
	rs := newReportService(db, "2026-03-15", t)
	caller := testCaller(models.UnitRetail)

	item := seedItem(t, db, "Кабель UTP", 0, "700", models.UnitRetail)
	other := seedItem(t, db, "Коннектор RJ45", 0, "10", models.UnitRetail)

	// Фиксированные ID дают детерминированный tie-break
	alpha := &models.Customer{ID: "10000000-0000-0000-0000-000000000001", Name: "Альфа", BusinessUnit: models.UnitRetail}
	bravo := &models.Customer{ID: "20000000-0000-0000-0000-000000000002", Name: "Браво", BusinessUnit: models.UnitRetail}
	charlie := &models.Customer{ID: "30000000-0000-0000-0000-000000000003", Name: "Чарли", BusinessUnit: models.UnitRetail}
	require.NoError(t, db.Create([]*models.Customer{alpha, bravo, charlie}).Error)

	date := mustDate(t, "2026-03-05")
	line := func(itemID string) []models.OutgoingLine {
		return []models.OutgoingLine{{
			ItemID: itemID, Quantity: 1,
			UnitPrice: dec("1000"), CostBasis: dec("700"),
			SubtotalRevenue: dec("1000"), SubtotalCost: dec("700"),
		}}
	}

	// Альфа: 2 оплаченные продажи с товаром
	seedPaidTxn(t, db, models.UnitRetail, alpha.ID, date, models.PaymentStatusPaid, "1000", "700", "25", line(item.ID))
	seedPaidTxn(t, db, models.UnitRetail, alpha.ID, date, models.PaymentStatusPaid, "1000", "700", "25", line(item.ID))
	// Браво и Чарли: по одной - ничья, решает ID
	seedPaidTxn(t, db, models.UnitRetail, charlie.ID, date, models.PaymentStatusPaid, "1000", "700", "25", line(item.ID))
	seedPaidTxn(t, db, models.UnitRetail, bravo.ID, date, models.PaymentStatusPaid, "1000", "700", "25", line(item.ID))
	// Не входят в рейтинг: неоплаченная, другой товар, удаленная
	seedPaidTxn(t, db, models.UnitRetail, bravo.ID, date, models.PaymentStatusUnpaid, "1000", "700", "25", line(item.ID))
	seedPaidTxn(t, db, models.UnitRetail, bravo.ID, date, models.PaymentStatusPaid, "1000", "700", "25", line(other.ID))
	removed := seedPaidTxn(t, db, models.UnitRetail, bravo.ID, date, models.PaymentStatusPaid, "1000", "700", "25", line(item.ID))
	require.NoError(t, db.Delete(removed).Error)

	top, err := rs.TopCustomers(caller, item.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)

	require.Equal(t, alpha.ID, top[0].CustomerID)
	require.Equal(t, "Альфа", top[0].Name)
	require.Equal(t, 2, top[0].Transactions)

	// Ничья 1:1 упорядочена по ID покупателя
	require.Equal(t, bravo.ID, top[1].CustomerID)
	require.Equal(t, charlie.ID, top[2].CustomerID)

	// Лимит обрезает хвост рейтинга
	top, err = rs.TopCustomers(caller, item.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, alpha.ID, top[0].CustomerID)
}

func TestTopCustomersRequiresItem(t *testing.T) {
	db := setupTestDB(t)
	rs := newReportService(db, "2026-03-15", t)

	_, err := rs.TopCustomers(testCaller(models.UnitRetail), "", 1, 10)
	require.True(t, IsValidationError(err))
}
