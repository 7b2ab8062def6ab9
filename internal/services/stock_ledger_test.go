package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"torgplus/server/internal/models"
)

func TestStockLedgerApplyDelta(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewStockLedger()
	item := seedItem(t, db, "Кабель UTP", 100, "700", models.UnitRetail)

	updated, err := ledger.ApplyDelta(db, item.ID, models.UnitRetail, -30)
	require.NoError(t, err)
	require.Equal(t, 70, updated.Stock)
	require.Equal(t, 70, reloadItem(t, db, item.ID).Stock)

	updated, err = ledger.ApplyDelta(db, item.ID, models.UnitRetail, 15)
	require.NoError(t, err)
	require.Equal(t, 85, updated.Stock)
}

func TestStockLedgerRejectsNegative(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewStockLedger()
	item := seedItem(t, db, "Кабель UTP", 10, "700", models.UnitRetail)

	_, err := ledger.ApplyDelta(db, item.ID, models.UnitRetail, -11)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 10, reloadItem(t, db, item.ID).Stock)

	// Списание до нуля ровно - допустимо
	updated, err := ledger.ApplyDelta(db, item.ID, models.UnitRetail, -10)
	require.NoError(t, err)
	require.Equal(t, 0, updated.Stock)
}

func TestStockLedgerUnknownItem(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewStockLedger()

	_, err := ledger.ApplyDelta(db, "00000000-0000-0000-0000-000000000000", models.UnitRetail, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStockLedgerForeignUnit(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewStockLedger()
	item := seedItem(t, db, "Кабель UTP", 100, "700", models.UnitWholesale)

	_, err := ledger.ApplyDelta(db, item.ID, models.UnitRetail, -1)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, 100, reloadItem(t, db, item.ID).Stock)
}
