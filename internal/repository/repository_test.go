package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func f(v float64) *float64 { return &v }

func seedCompletedBatch(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	batches := NewBatchRepo(db)
	batchID, err := batches.Create(&domain.Batch{InvoiceFile: "inv.csv", ContractFile: "con.csv"})
	require.NoError(t, err)
	require.NoError(t, batches.MarkProcessing(batchID))

	invoices := []domain.Invoice{
		{AWBNumber: "AWB-1", Zone: "A", WeightBilled: 0.5, BaseFreight: 70, TotalBilled: 82.60},
		{AWBNumber: "AWB-2", Zone: "B", WeightBilled: 1.0, BaseFreight: 60, TotalBilled: 70.80},
	}
	findings := []domain.Discrepancy{
		{
			AWBNumber:        "AWB-1",
			CheckType:        domain.CheckBaseFreightDeviation,
			Description:      "Base freight overcharge",
			BilledValue:      f(70),
			ExpectedValue:    f(35),
			OverchargeAmount: 41.30,
			Severity:         domain.SeverityLow,
			ConfidenceScore:  0.95,
			ConfidenceReason: "slab lookup",
		},
		{
			AWBNumber:        "AWB-2",
			CheckType:        domain.CheckDuplicateShipment,
			Description:      "duplicate",
			OverchargeAmount: 70.80,
			Severity:         domain.SeverityCritical,
			ConfidenceScore:  1.0,
		},
	}
	summary := domain.BatchSummary{
		TotalInvoices:      2,
		TotalDiscrepancies: 2,
		TotalOvercharge:    112.10,
		TotalBilled:        153.40,
		OverchargeRate:     73.08,
		SeverityCounts:     map[domain.Severity]int{domain.SeverityLow: 1, domain.SeverityCritical: 1},
		CheckTypeCounts:    map[domain.CheckType]int{domain.CheckBaseFreightDeviation: 1, domain.CheckDuplicateShipment: 1},
	}
	alerts := []domain.Alert{{
		BatchID:      batchID,
		ProviderName: "Delhivery",
		AlertType:    domain.AlertHighOverchargeRate,
		Title:        "High Overcharge Rate Detected",
		Message:      "test alert",
		Severity:     domain.SeverityCritical,
		Value:        73.08,
		Threshold:    10,
	}}

	require.NoError(t, NewResultWriter(db).SaveRun(batchID, "Delhivery", invoices, findings, summary, alerts))
	return batchID
}

func TestSaveRunPersistsEverything(t *testing.T) {
	db := newTestDB(t)
	batchID := seedCompletedBatch(t, db)

	batch, err := NewBatchRepo(db).GetByID(batchID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCompleted, batch.Status)
	assert.Equal(t, "Delhivery", batch.ProviderName)
	assert.Equal(t, 2, batch.TotalInvoices)
	require.NotNil(t, batch.Summary)
	assert.InDelta(t, 112.10, batch.Summary.TotalOvercharge, 0.001)
	assert.Equal(t, 1, batch.Summary.SeverityCounts[domain.SeverityCritical])

	invoices, err := NewInvoiceRepo(db).GetByBatch(batchID)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "AWB-1", invoices[0].AWBNumber)
	assert.Equal(t, batchID, invoices[0].BatchID)

	findings, err := NewDiscrepancyRepo(db).GetByBatch(batchID)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	// Largest overcharge first.
	assert.Equal(t, domain.CheckDuplicateShipment, findings[0].CheckType)
	assert.Equal(t, domain.DisputePending, findings[0].DisputeStatus)
	require.NotNil(t, findings[1].BilledValue)
	assert.Equal(t, 70.0, *findings[1].BilledValue)
	// Findings link back to their invoice rows by AWB.
	assert.Equal(t, invoices[0].ID, findings[1].InvoiceID)

	alerts, err := NewAlertRepo(db).List()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertHighOverchargeRate, alerts[0].AlertType)
	assert.False(t, alerts[0].IsRead)
}

func TestBatchLifecycle(t *testing.T) {
	db := newTestDB(t)
	batches := NewBatchRepo(db)

	id, err := batches.Create(&domain.Batch{InvoiceFile: "a.csv", ContractFile: "b.csv"})
	require.NoError(t, err)

	b, err := batches.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchPending, b.Status)
	assert.Equal(t, "Unknown", b.ProviderName)

	require.NoError(t, batches.MarkFailed(id, "parse error"))
	b, err = batches.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchFailed, b.Status)
	assert.Equal(t, "parse error", b.ErrorMessage)

	count, err := batches.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	list, err := batches.List(10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, batches.Delete(id))
	assert.ErrorIs(t, batches.Delete(id), sql.ErrNoRows)
}

func TestDeleteBatchCascades(t *testing.T) {
	db := newTestDB(t)
	batchID := seedCompletedBatch(t, db)

	require.NoError(t, NewBatchRepo(db).Delete(batchID))

	n, err := NewInvoiceRepo(db).CountByBatch(batchID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	findings, err := NewDiscrepancyRepo(db).GetByBatch(batchID)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestDiscrepancyFilterAndDispute(t *testing.T) {
	db := newTestDB(t)
	batchID := seedCompletedBatch(t, db)
	discs := NewDiscrepancyRepo(db)

	criticals, err := discs.List(DiscrepancyFilter{BatchID: batchID, Severity: "critical"})
	require.NoError(t, err)
	require.Len(t, criticals, 1)
	assert.Equal(t, domain.CheckDuplicateShipment, criticals[0].CheckType)

	updated, err := discs.UpdateDispute(criticals[0].ID, domain.DisputeRaised, "claimed with provider")
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeRaised, updated.DisputeStatus)
	assert.Equal(t, "claimed with provider", updated.DisputeNotes)
	require.NotNil(t, updated.DisputeUpdatedAt)

	_, err = discs.UpdateDispute(99999, domain.DisputeRaised, "")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Bulk raise touches only the remaining pending finding.
	n, err := discs.RaisePending(batchID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := discs.List(DiscrepancyFilter{BatchID: batchID, Status: "pending"})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSavedContractRoundTrip(t *testing.T) {
	db := newTestDB(t)
	contracts := NewContractRepo(db)

	sc := &domain.SavedContract{
		Name:     "Delhivery FY24",
		Provider: "Delhivery",
		Extracted: domain.Contract{
			Provider:         "Delhivery",
			WeightSlabs:      []domain.WeightSlab{{Zone: "A", MinWeight: 0, MaxWeight: 0.5, BaseRate: 35}},
			CODRate:          2.5,
			FuelSurchargePct: 12,
			GSTPct:           18,
		},
	}
	id, err := contracts.Save(sc)
	require.NoError(t, err)

	got, err := contracts.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Delhivery FY24", got.Name)
	require.Len(t, got.Extracted.WeightSlabs, 1)
	assert.Equal(t, 35.0, got.Extracted.WeightSlabs[0].BaseRate)
	assert.Equal(t, 2.5, got.Extracted.CODRate)

	list, err := contracts.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, contracts.Delete(id))
	assert.ErrorIs(t, contracts.Delete(id), sql.ErrNoRows)
}

func TestAlertReadState(t *testing.T) {
	db := newTestDB(t)
	seedCompletedBatch(t, db)
	alerts := NewAlertRepo(db)

	n, err := alerts.UnreadCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := alerts.List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, alerts.MarkRead(list[0].ID))
	n, err = alerts.UnreadCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.ErrorIs(t, alerts.MarkRead(99999), sql.ErrNoRows)

	marked, err := alerts.MarkAllRead()
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}
