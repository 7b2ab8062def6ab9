package services

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"torgplus/server/internal/models"
	"torgplus/server/internal/utils"
)

// TTL кэша отчетов в Redis
const reportCacheTTL = 60 * time.Second

// ReportService считает периодную статистику по закоммиченному состоянию
// Только чтение, никаких мутаций; работает параллельно с писателями
// Все запросы обязательно фильтруются по подразделению
type ReportService struct {
	db    *gorm.DB
	cache *utils.RedisClient // nil допустим - кэш просто выключен
	split ProfitSplitConfig
	now   func() time.Time
}

// NewReportService создает новый сервис отчетов
func NewReportService(db *gorm.DB, split ProfitSplitConfig) *ReportService {
	return &ReportService{
		db:    db,
		split: split,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetCache подключает Redis кэш для Stats и ChartSeries
func (s *ReportService) SetCache(cache *utils.RedisClient) {
	s.cache = cache
}

// ResolvePeriode переводит индекс периода в календарный месяц
// 1 = текущий месяц, 2 = предыдущий и т.д. Возвращает [start, end)
func (s *ReportService) ResolvePeriode(periode int) (time.Time, time.Time, error) {
	if periode < 1 {
		return time.Time{}, time.Time{}, &ValidationError{Field: "periode", Reason: "должен быть >= 1"}
	}
	now := s.now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := firstOfMonth.AddDate(0, -(periode - 1), 0)
	end := start.AddDate(0, 1, 0)
	return start, end, nil
}

// PercentChange - изменение метрики к прошлому периоду в процентах
// При нулевой базе деление не выполняется: 0 -> 0 дает 0,
// 0 -> X помечается флагом Undefined
type PercentChange struct {
	Value     decimal.Decimal `json:"value"`
	Undefined bool            `json:"undefined"`
}

// percentChange считает изменение current к previous
func percentChange(current, previous decimal.Decimal) PercentChange {
	if previous.IsZero() {
		return PercentChange{Value: decimal.Zero, Undefined: !current.IsZero()}
	}
	value := current.Sub(previous).
		Div(previous).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return PercentChange{Value: value}
}

// StatsMetric - одна метрика с данными текущего и прошлого периода
type StatsMetric struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Change   PercentChange   `json:"change"`
}

// PeriodStats - финансовая статистика периода
type PeriodStats struct {
	Periode     int          `json:"periode"`
	RangeStart  time.Time    `json:"range_start"`
	RangeEnd    time.Time    `json:"range_end"`
	Revenue     StatsMetric  `json:"revenue"`      // Выручка по оплаченным продажам
	Cost        StatsMetric  `json:"cost"`         // Себестоимость проданного
	GrossProfit StatsMetric  `json:"gross_profit"` // Валовая прибыль
	FeeTotal    StatsMetric  `json:"fee_total"`    // Сумма комиссий
	Expenses    StatsMetric  `json:"expenses"`     // Расходы из книги расходов
	NetProfit   StatsMetric  `json:"net_profit"`   // Чистая прибыль
}

// periodTotals - суммы одного периода
type periodTotals struct {
	revenue  decimal.Decimal
	cost     decimal.Decimal
	fee      decimal.Decimal
	expenses decimal.Decimal
}

func (t periodTotals) gross() decimal.Decimal {
	return t.revenue.Sub(t.cost)
}

func (t periodTotals) net() decimal.Decimal {
	return t.gross().Sub(t.expenses).Sub(t.fee)
}

// Stats считает статистику периода и дельты к предыдущему сопоставимому периоду
// Выручка и себестоимость признаются только по ОПЛАЧЕННЫМ продажам,
// расходы берутся все попавшие в диапазон
func (s *ReportService) Stats(caller Caller, periode int) (*PeriodStats, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("report:stats:%s:%d", caller.Unit, periode)
	var cached PeriodStats
	if s.cacheGet(cacheKey, &cached) {
		return &cached, nil
	}

	start, end, err := s.ResolvePeriode(periode)
	if err != nil {
		return nil, err
	}
	prevStart, prevEnd, err := s.ResolvePeriode(periode + 1)
	if err != nil {
		return nil, err
	}

	current, err := s.collectTotals(caller.Unit, start, end)
	if err != nil {
		return nil, err
	}
	previous, err := s.collectTotals(caller.Unit, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	stats := &PeriodStats{
		Periode:     periode,
		RangeStart:  start,
		RangeEnd:    end,
		Revenue:     metric(current.revenue, previous.revenue),
		Cost:        metric(current.cost, previous.cost),
		GrossProfit: metric(current.gross(), previous.gross()),
		FeeTotal:    metric(current.fee, previous.fee),
		Expenses:    metric(current.expenses, previous.expenses),
		NetProfit:   metric(current.net(), previous.net()),
	}

	s.cacheSet(cacheKey, stats)
	return stats, nil
}

func metric(current, previous decimal.Decimal) StatsMetric {
	return StatsMetric{
		Current:  current,
		Previous: previous,
		Change:   percentChange(current, previous),
	}
}

// collectTotals собирает суммы периода
// Суммирование выполняется в Go поверх decimal, а не SQL SUM, чтобы итоги
// не зависели от того, как конкретный драйвер хранит decimal-колонки
func (s *ReportService) collectTotals(unit models.BusinessUnit, start, end time.Time) (periodTotals, error) {
	totals := periodTotals{
		revenue:  decimal.Zero,
		cost:     decimal.Zero,
		fee:      decimal.Zero,
		expenses: decimal.Zero,
	}

	txns, err := s.paidTransactions(unit, start, end)
	if err != nil {
		return totals, err
	}
	for _, txn := range txns {
		totals.revenue = totals.revenue.Add(txn.TotalRevenue)
		totals.cost = totals.cost.Add(txn.TotalCost)
		totals.fee = totals.fee.Add(txn.Fee)
	}

	var expenses []models.ExpenseEntry
	if err := s.db.Where("business_unit = ? AND date >= ? AND date < ?", unit, start, end).
		Find(&expenses).Error; err != nil {
		return totals, fmt.Errorf("чтение расходов: %w", err)
	}
	for _, e := range expenses {
		totals.expenses = totals.expenses.Add(e.Total)
	}
	return totals, nil
}

// paidTransactions читает оплаченные продажи подразделения за диапазон
func (s *ReportService) paidTransactions(unit models.BusinessUnit, start, end time.Time) ([]models.OutgoingTransaction, error) {
	var txns []models.OutgoingTransaction
	err := s.db.Where(
		"business_unit = ? AND payment_status = ? AND date >= ? AND date < ?",
		unit, models.PaymentStatusPaid, start, end,
	).Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("чтение продаж: %w", err)
	}
	return txns, nil
}

// ChartPoint - точка графика выручка/расходы за день
type ChartPoint struct {
	Label   string          `json:"label"` // Дата "2006-01-02"
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
}

// ChartSeries возвращает поденный ряд выручки и расходов за период
// Точки идут строго по возрастанию даты, по одной на каждый день диапазона
func (s *ReportService) ChartSeries(caller Caller, periode int) ([]ChartPoint, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("report:chart:%s:%d", caller.Unit, periode)
	var cached []ChartPoint
	if s.cacheGet(cacheKey, &cached) {
		return cached, nil
	}

	start, end, err := s.ResolvePeriode(periode)
	if err != nil {
		return nil, err
	}

	txns, err := s.paidTransactions(caller.Unit, start, end)
	if err != nil {
		return nil, err
	}
	var expenses []models.ExpenseEntry
	if err := s.db.Where("business_unit = ? AND date >= ? AND date < ?", caller.Unit, start, end).
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("чтение расходов: %w", err)
	}

	revenueByDay := make(map[string]decimal.Decimal)
	for _, txn := range txns {
		day := txn.Date.UTC().Format("2006-01-02")
		revenueByDay[day] = revenueByDay[day].Add(txn.TotalRevenue)
	}
	expenseByDay := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		day := e.Date.UTC().Format("2006-01-02")
		expenseByDay[day] = expenseByDay[day].Add(e.Total)
	}

	var points []ChartPoint
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		label := day.Format("2006-01-02")
		points = append(points, ChartPoint{
			Label:   label,
			Revenue: orZero(revenueByDay[label]),
			Expense: orZero(expenseByDay[label]),
		})
	}

	s.cacheSet(cacheKey, points)
	return points, nil
}

// ProfitSplitResult - распределение чистой прибыли периода
type ProfitSplitResult struct {
	Periode   int               `json:"periode"`
	NetProfit decimal.Decimal   `json:"net_profit"`
	Shares    []ShareAllocation `json:"shares"`
}

// ProfitSplit распределяет чистую прибыль периода по настроенным долям
func (s *ReportService) ProfitSplit(caller Caller, periode int) (*ProfitSplitResult, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}

	start, end, err := s.ResolvePeriode(periode)
	if err != nil {
		return nil, err
	}
	totals, err := s.collectTotals(caller.Unit, start, end)
	if err != nil {
		return nil, err
	}

	net := totals.net()
	return &ProfitSplitResult{
		Periode:   periode,
		NetProfit: net,
		Shares:    s.split.Allocate(net),
	}, nil
}

// TopCustomer - позиция рейтинга покупателей
type TopCustomer struct {
	CustomerID   string `json:"customer_id"`
	Name         string `json:"name"`
	Transactions int    `json:"transactions"` // Число оплаченных продаж с товаром
}

// TopCustomers ранжирует покупателей по числу оплаченных продаж товара за период
// Сортировка: число продаж по убыванию, при равенстве - ID покупателя
// по возрастанию, чтобы рейтинг был детерминированным
func (s *ReportService) TopCustomers(caller Caller, itemID string, periode, limit int) ([]TopCustomer, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if itemID == "" {
		return nil, &ValidationError{Field: "item_id", Reason: "не задан"}
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	start, end, err := s.ResolvePeriode(periode)
	if err != nil {
		return nil, err
	}

	type rankRow struct {
		CustomerID string
		Cnt        int
	}
	var rows []rankRow
	err = s.db.Table("outgoing_lines").
		Select("outgoing_transactions.customer_id AS customer_id, COUNT(DISTINCT outgoing_transactions.id) AS cnt").
		Joins("JOIN outgoing_transactions ON outgoing_transactions.id = outgoing_lines.transaction_id").
		Where("outgoing_transactions.deleted_at IS NULL").
		Where("outgoing_transactions.business_unit = ?", caller.Unit).
		Where("outgoing_transactions.payment_status = ?", models.PaymentStatusPaid).
		Where("outgoing_transactions.date >= ? AND outgoing_transactions.date < ?", start, end).
		Where("outgoing_lines.item_id = ?", itemID).
		Group("outgoing_transactions.customer_id").
		Order("cnt DESC, customer_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("рейтинг покупателей: %w", err)
	}
	if len(rows) == 0 {
		return []TopCustomer{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.CustomerID
	}
	var customers []models.Customer
	if err := s.db.Where("id IN ?", ids).Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("чтение покупателей: %w", err)
	}
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	result := make([]TopCustomer, len(rows))
	for i, row := range rows {
		result[i] = TopCustomer{
			CustomerID:   row.CustomerID,
			Name:         names[row.CustomerID],
			Transactions: row.Cnt,
		}
	}
	return result, nil
}

// cacheGet читает отчет из кэша, промах и ошибка равнозначны
func (s *ReportService) cacheGet(key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.GetJSON(key, dest)
	if err != nil {
		log.Printf("⚠️ Кэш отчетов: чтение %s: %v", key, err)
		return false
	}
	return found
}

// cacheSet пишет отчет в кэш best-effort
func (s *ReportService) cacheSet(key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(key, value, reportCacheTTL); err != nil {
		log.Printf("⚠️ Кэш отчетов: запись %s: %v", key, err)
	}
}

// orZero нормализует нулевое значение decimal из map
func orZero(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return d
}
