package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"torgplus/server/internal/models"
)

// setupTestDB открывает изолированную in-memory sqlite БД и выполняет миграции
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

// newSalesServices собирает полный стек писателей поверх тестовой БД
func newSalesServices(db *gorm.DB) (*OutgoingService, *IncomingService) {
	numbering := NewNumberingService()
	ledger := NewStockLedger()
	audit := NewAuditService(db)
	rules := DefaultFinanceRules()
	outgoing := NewOutgoingService(db, numbering, ledger, audit, rules)
	incoming := NewIncomingService(db, numbering, ledger, audit, rules)
	return outgoing, incoming
}

func testCaller(unit models.BusinessUnit) Caller {
	return Caller{Actor: "tester", Unit: unit, Origin: "127.0.0.1"}
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return date
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// requireDecimal сравнивает decimal по значению, а не по представлению
func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "ожидалось %s, получено %s", want, got)
}

func seedItem(t *testing.T, db *gorm.DB, name string, stock int, costPrice string, unit models.BusinessUnit) *models.Item {
	t.Helper()
	item := &models.Item{
		Name:         name,
		SalePrice:    decimal.Zero,
		CostPrice:    dec(costPrice),
		Stock:        stock,
		BusinessUnit: unit,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedCustomer(t *testing.T, db *gorm.DB, name string, unit models.BusinessUnit) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: name, BusinessUnit: unit}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// reloadItem перечитывает остаток товара из БД
func reloadItem(t *testing.T, db *gorm.DB, id string) *models.Item {
	t.Helper()
	var item models.Item
	require.NoError(t, db.First(&item, "id = ?", id).Error)
	return &item
}

// seedPaidTxn пишет продажу напрямую в БД, минуя сервис - для тестов отчетов
func seedPaidTxn(t *testing.T, db *gorm.DB, unit models.BusinessUnit, customerID string, date time.Time, status models.PaymentStatus, revenue, cost, fee string, lines []models.OutgoingLine) *models.OutgoingTransaction {
	t.Helper()
	suffix := uuid.New().String()[:8]
	txn := &models.OutgoingTransaction{
		InvoiceNumber:  "INV-TEST-" + suffix,
		DeliveryNumber: "DO-TEST-" + suffix,
		CustomerID:     customerID,
		Date:           date,
		DueDate:        date.AddDate(0, 0, 30),
		ShippingCost:   decimal.Zero,
		PaymentStatus:  status,
		TotalRevenue:   dec(revenue),
		TotalCost:      dec(cost),
		GrossProfit:    dec(revenue).Sub(dec(cost)),
		Fee:            dec(fee),
		NetProfit:      dec(revenue).Sub(dec(cost)).Sub(dec(fee)),
		BusinessUnit:   unit,
		Lines:          lines,
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

func seedExpense(t *testing.T, db *gorm.DB, unit models.BusinessUnit, date time.Time, total string) {
	t.Helper()
	entry := &models.ExpenseEntry{
		Date:         date,
		Description:  "тестовый расход",
		Quantity:     1,
		UnitPrice:    dec(total),
		Total:        dec(total),
		BusinessUnit: unit,
	}
	require.NoError(t, db.Create(entry).Error)
}
