package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"torgplus/server/internal/models"
)

func TestAuditRecordAndList(t *testing.T) {
	db := setupTestDB(t)
	audit := NewAuditService(db)
	retail := testCaller(models.UnitRetail)
	wholesale := testCaller(models.UnitWholesale)

	before := map[string]string{"name": "старое"}
	after := map[string]string{"name": "новое"}
	audit.Record(retail, models.AuditActionUpdate, "incoming_record", "rec-1", before, after)
	audit.Record(wholesale, models.AuditActionDelete, "outgoing_transaction", "txn-9", before, nil)

	records, err := audit.List(retail, 50)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, models.AuditActionUpdate, records[0].Action)
	require.Equal(t, "rec-1", records[0].EntityID)
	require.Equal(t, "tester", records[0].Actor)

	// Снимки хранятся как валидный JSON
	var snapshot map[string]string
	require.NoError(t, json.Unmarshal([]byte(records[0].Before), &snapshot))
	require.Equal(t, "старое", snapshot["name"])

	// Пустой снимок CREATE/DELETE остается пустой строкой
	records, err = audit.List(wholesale, 50)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Empty(t, records[0].After)
}

func TestAuditListRejectsInvalidCaller(t *testing.T) {
	db := setupTestDB(t)
	audit := NewAuditService(db)

	_, err := audit.List(Caller{}, 50)
	require.True(t, IsValidationError(err))
}
