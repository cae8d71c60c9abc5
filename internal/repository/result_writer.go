package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

// ResultWriter persists the full outcome of one audit run. Everything goes
// in a single transaction: either the invoices, findings, alerts and batch
// summary all land, or none of them do. A failed batch never leaves a
// partial discrepancy set behind.
type ResultWriter struct {
	db *sql.DB
}

func NewResultWriter(db *sql.DB) *ResultWriter {
	return &ResultWriter{db: db}
}

// SaveRun writes invoices, findings, alerts and the completed batch row.
// Findings are linked to their invoice rows by AWB (first occurrence wins,
// matching the duplicate-detection semantics).
func (w *ResultWriter) SaveRun(
	batchID int64,
	provider string,
	invoices []domain.Invoice,
	findings []domain.Discrepancy,
	summary domain.BatchSummary,
	alerts []domain.Alert,
) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	awbToID, err := insertInvoices(tx, batchID, invoices)
	if err != nil {
		return fmt.Errorf("insert invoices: %w", err)
	}

	if err := insertFindings(tx, batchID, awbToID, findings); err != nil {
		return fmt.Errorf("insert discrepancies: %w", err)
	}

	if err := insertAlerts(tx, alerts); err != nil {
		return fmt.Errorf("insert alerts: %w", err)
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	_, err = tx.Exec(
		`UPDATE batches SET status = ?, provider_name = ?, total_invoices = ?,
		 processed_invoices = ?, summary = ? WHERE id = ?`,
		string(domain.BatchCompleted), providerOrUnknown(provider),
		len(invoices), len(invoices), string(summaryJSON), batchID,
	)
	if err != nil {
		return fmt.Errorf("complete batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertInvoices(tx *sql.Tx, batchID int64, invoices []domain.Invoice) (map[string]int64, error) {
	stmt, err := tx.Prepare(
		`INSERT INTO invoices
		(batch_id, awb_number, shipment_date, origin_pincode, destination_pincode,
		 weight_billed, actual_weight, zone, base_freight, cod_fee, rto_fee,
		 fuel_surcharge, other_surcharges, gst_rate, total_billed)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	awbToID := make(map[string]int64, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		res, err := stmt.Exec(
			batchID, inv.AWBNumber, inv.ShipmentDate, inv.OriginPincode,
			inv.DestinationPincode, inv.WeightBilled, inv.ActualWeight, inv.Zone,
			inv.BaseFreight, inv.CODFee, inv.RTOFee, inv.FuelSurcharge,
			inv.OtherSurcharges, inv.GSTRate, inv.TotalBilled,
		)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		if _, seen := awbToID[inv.AWBNumber]; !seen {
			awbToID[inv.AWBNumber] = id
		}
	}
	return awbToID, nil
}

func insertFindings(tx *sql.Tx, batchID int64, awbToID map[string]int64, findings []domain.Discrepancy) error {
	stmt, err := tx.Prepare(
		`INSERT INTO discrepancies
		(invoice_id, batch_id, awb_number, check_type, description, billed_value,
		 expected_value, overcharge_amount, severity, confidence_score,
		 confidence_reason, dispute_status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range findings {
		d := &findings[i]
		var invoiceID any
		if id, ok := awbToID[d.AWBNumber]; ok {
			invoiceID = id
		}
		var billed, expected any
		if d.BilledValue != nil {
			billed = *d.BilledValue
		}
		if d.ExpectedValue != nil {
			expected = *d.ExpectedValue
		}
		status := d.DisputeStatus
		if status == "" {
			status = domain.DisputePending
		}
		_, err := stmt.Exec(
			invoiceID, batchID, d.AWBNumber, string(d.CheckType), d.Description,
			billed, expected, d.OverchargeAmount, string(d.Severity),
			d.ConfidenceScore, d.ConfidenceReason, string(status),
		)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

func insertAlerts(tx *sql.Tx, alerts []domain.Alert) error {
	stmt, err := tx.Prepare(
		`INSERT INTO alerts
		(batch_id, provider_name, alert_type, title, message, severity, value,
		 threshold, is_read, created_at)
		VALUES (?,?,?,?,?,?,?,?,0,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i := range alerts {
		a := &alerts[i]
		_, err := stmt.Exec(
			a.BatchID, a.ProviderName, string(a.AlertType), a.Title, a.Message,
			string(a.Severity), a.Value, a.Threshold, now,
		)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}
