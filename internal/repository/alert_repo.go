package repository

import (
	"database/sql"
	"time"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

func (r *AlertRepo) List() ([]domain.Alert, error) {
	rows, err := r.db.Query("SELECT * FROM alerts ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (r *AlertRepo) UnreadCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM alerts WHERE is_read = 0").Scan(&count)
	return count, err
}

func (r *AlertRepo) MarkRead(id int64) error {
	res, err := r.db.Exec("UPDATE alerts SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead marks every unread alert as read and returns how many it
// touched.
func (r *AlertRepo) MarkAllRead() (int, error) {
	res, err := r.db.Exec("UPDATE alerts SET is_read = 1 WHERE is_read = 0")
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func scanAlert(rows *sql.Rows) (*domain.Alert, error) {
	var a domain.Alert
	var alertType, severity, createdAt string
	var batchIDNull sql.NullInt64
	var providerNull sql.NullString
	var valueNull, thresholdNull sql.NullFloat64
	var isRead int

	err := rows.Scan(
		&a.ID, &batchIDNull, &providerNull, &alertType, &a.Title, &a.Message,
		&severity, &valueNull, &thresholdNull, &isRead, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.AlertType = domain.AlertType(alertType)
	a.Severity = domain.Severity(severity)
	a.IsRead = isRead != 0
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if batchIDNull.Valid {
		a.BatchID = batchIDNull.Int64
	}
	if providerNull.Valid {
		a.ProviderName = providerNull.String
	}
	a.Value = valueNull.Float64
	a.Threshold = thresholdNull.Float64
	return &a, nil
}
