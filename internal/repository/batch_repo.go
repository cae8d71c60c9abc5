package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

type BatchRepo struct {
	db *sql.DB
}

func NewBatchRepo(db *sql.DB) *BatchRepo {
	return &BatchRepo{db: db}
}

// Create inserts a new pending batch and returns its ID.
func (r *BatchRepo) Create(b *domain.Batch) (int64, error) {
	if b.Status == "" {
		b.Status = domain.BatchPending
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.Exec(
		`INSERT INTO batches (invoice_file, contract_file, provider_name, status, created_at)
		VALUES (?,?,?,?,?)`,
		b.InvoiceFile, b.ContractFile, providerOrUnknown(b.ProviderName),
		string(b.Status), b.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	b.ID = id
	return id, nil
}

func (r *BatchRepo) GetByID(id int64) (*domain.Batch, error) {
	row := r.db.QueryRow("SELECT * FROM batches WHERE id = ?", id)
	return scanBatchRow(row)
}

// List returns the most recent batches, newest first.
func (r *BatchRepo) List(limit int) ([]domain.Batch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		"SELECT * FROM batches ORDER BY created_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

// ListCompleted returns completed batches in chronological order, for the
// cross-batch analytics rollup.
func (r *BatchRepo) ListCompleted() ([]domain.Batch, error) {
	rows, err := r.db.Query(
		"SELECT * FROM batches WHERE status = ? ORDER BY created_at",
		string(domain.BatchCompleted),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

func (r *BatchRepo) MarkProcessing(id int64) error {
	_, err := r.db.Exec(
		"UPDATE batches SET status = ? WHERE id = ?",
		string(domain.BatchProcessing), id,
	)
	return err
}

// MarkFailed puts the batch in its terminal failed state with the recorded
// error message.
func (r *BatchRepo) MarkFailed(id int64, msg string) error {
	_, err := r.db.Exec(
		"UPDATE batches SET status = ?, error_message = ? WHERE id = ?",
		string(domain.BatchFailed), msg, id,
	)
	return err
}

func (r *BatchRepo) SetProvider(id int64, provider string) error {
	_, err := r.db.Exec(
		"UPDATE batches SET provider_name = ? WHERE id = ?",
		providerOrUnknown(provider), id,
	)
	return err
}

// Delete removes a batch; invoices, discrepancies and alerts cascade.
func (r *BatchRepo) Delete(id int64) error {
	res, err := r.db.Exec("DELETE FROM batches WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *BatchRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM batches").Scan(&count)
	return count, err
}

// --- helpers ---

func providerOrUnknown(p string) string {
	if p == "" {
		return "Unknown"
	}
	return p
}

func scanBatchRow(row *sql.Row) (*domain.Batch, error) {
	var b domain.Batch
	var status, createdAt string
	var errMsgNull, summaryNull sql.NullString

	err := row.Scan(
		&b.ID, &b.InvoiceFile, &b.ContractFile, &b.ProviderName, &status,
		&b.TotalInvoices, &b.ProcessedInvoices, &errMsgNull, &summaryNull, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	fillBatch(&b, status, createdAt, errMsgNull, summaryNull)
	return &b, nil
}

func scanBatches(rows *sql.Rows) ([]domain.Batch, error) {
	var batches []domain.Batch
	for rows.Next() {
		var b domain.Batch
		var status, createdAt string
		var errMsgNull, summaryNull sql.NullString

		err := rows.Scan(
			&b.ID, &b.InvoiceFile, &b.ContractFile, &b.ProviderName, &status,
			&b.TotalInvoices, &b.ProcessedInvoices, &errMsgNull, &summaryNull, &createdAt,
		)
		if err != nil {
			return nil, err
		}
		fillBatch(&b, status, createdAt, errMsgNull, summaryNull)
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func fillBatch(b *domain.Batch, status, createdAt string, errMsg, summary sql.NullString) {
	b.Status = domain.BatchStatus(status)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if errMsg.Valid {
		b.ErrorMessage = errMsg.String
	}
	if summary.Valid && summary.String != "" {
		var s domain.BatchSummary
		if err := json.Unmarshal([]byte(summary.String), &s); err == nil {
			b.Summary = &s
		}
	}
}
