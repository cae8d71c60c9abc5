package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

type DiscrepancyRepo struct {
	db *sql.DB
}

func NewDiscrepancyRepo(db *sql.DB) *DiscrepancyRepo {
	return &DiscrepancyRepo{db: db}
}

// GetByBatch returns all findings for a batch, largest overcharge first.
func (r *DiscrepancyRepo) GetByBatch(batchID int64) ([]domain.Discrepancy, error) {
	rows, err := r.db.Query(
		"SELECT * FROM discrepancies WHERE batch_id = ? ORDER BY overcharge_amount DESC", batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDiscrepancies(rows)
}

// GetAll returns every finding across batches, for analytics.
func (r *DiscrepancyRepo) GetAll() ([]domain.Discrepancy, error) {
	rows, err := r.db.Query("SELECT * FROM discrepancies ORDER BY batch_id, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDiscrepancies(rows)
}

type DiscrepancyFilter struct {
	BatchID   int64
	CheckType string
	Severity  string
	Status    string
}

func (r *DiscrepancyRepo) List(f DiscrepancyFilter) ([]domain.Discrepancy, error) {
	where, args := buildDiscrepancyWhere(f)
	rows, err := r.db.Query(
		"SELECT * FROM discrepancies"+where+" ORDER BY overcharge_amount DESC", args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDiscrepancies(rows)
}

// UpdateDispute sets the dispute workflow state of one finding.
func (r *DiscrepancyRepo) UpdateDispute(id int64, status domain.DisputeStatus, notes string) (*domain.Discrepancy, error) {
	now := time.Now().UTC()
	res, err := r.db.Exec(
		"UPDATE discrepancies SET dispute_status = ?, dispute_notes = ?, dispute_updated_at = ? WHERE id = ?",
		string(status), notes, now.Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, sql.ErrNoRows
	}

	row := r.db.QueryRow("SELECT * FROM discrepancies WHERE id = ?", id)
	return scanDiscrepancyRow(row)
}

// RaisePending flips every pending finding of a batch to raised. Returns
// the number updated.
func (r *DiscrepancyRepo) RaisePending(batchID int64) (int, error) {
	res, err := r.db.Exec(
		"UPDATE discrepancies SET dispute_status = ?, dispute_updated_at = ? WHERE batch_id = ? AND dispute_status = ?",
		string(domain.DisputeRaised), time.Now().UTC().Format(time.RFC3339),
		batchID, string(domain.DisputePending),
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// --- helpers ---

func buildDiscrepancyWhere(f DiscrepancyFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.BatchID > 0 {
		clauses = append(clauses, "batch_id = ?")
		args = append(args, f.BatchID)
	}
	if f.CheckType != "" {
		clauses = append(clauses, "check_type = ?")
		args = append(args, f.CheckType)
	}
	if f.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, f.Severity)
	}
	if f.Status != "" {
		clauses = append(clauses, "dispute_status = ?")
		args = append(args, f.Status)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanDiscrepancies(rows *sql.Rows) ([]domain.Discrepancy, error) {
	var discs []domain.Discrepancy
	for rows.Next() {
		d, err := scanDiscrepancyFrom(rows.Scan)
		if err != nil {
			return nil, err
		}
		discs = append(discs, *d)
	}
	return discs, rows.Err()
}

func scanDiscrepancyRow(row *sql.Row) (*domain.Discrepancy, error) {
	return scanDiscrepancyFrom(row.Scan)
}

func scanDiscrepancyFrom(scan func(...any) error) (*domain.Discrepancy, error) {
	var d domain.Discrepancy
	var checkType, severity, disputeStatus string
	var invoiceIDNull sql.NullInt64
	var billedNull, expectedNull sql.NullFloat64
	var reasonNull, notesNull, updatedNull sql.NullString

	err := scan(
		&d.ID, &invoiceIDNull, &d.BatchID, &d.AWBNumber, &checkType,
		&d.Description, &billedNull, &expectedNull, &d.OverchargeAmount,
		&severity, &d.ConfidenceScore, &reasonNull, &disputeStatus,
		&notesNull, &updatedNull,
	)
	if err != nil {
		return nil, err
	}

	d.CheckType = domain.CheckType(checkType)
	d.Severity = domain.Severity(severity)
	d.DisputeStatus = domain.DisputeStatus(disputeStatus)
	if invoiceIDNull.Valid {
		d.InvoiceID = invoiceIDNull.Int64
	}
	if billedNull.Valid {
		v := billedNull.Float64
		d.BilledValue = &v
	}
	if expectedNull.Valid {
		v := expectedNull.Float64
		d.ExpectedValue = &v
	}
	if reasonNull.Valid {
		d.ConfidenceReason = reasonNull.String
	}
	if notesNull.Valid {
		d.DisputeNotes = notesNull.String
	}
	if updatedNull.Valid {
		t, err := time.Parse(time.RFC3339, updatedNull.String)
		if err == nil {
			d.DisputeUpdatedAt = &t
		}
	}
	return &d, nil
}
