package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite pragmas are per-connection; a single pooled connection keeps
	// foreign_keys in force and serializes writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_file TEXT NOT NULL,
			contract_file TEXT NOT NULL,
			provider_name TEXT NOT NULL DEFAULT 'Unknown',
			status TEXT NOT NULL DEFAULT 'pending',
			total_invoices INTEGER NOT NULL DEFAULT 0,
			processed_invoices INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			summary TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_status ON batches(status)`,
		`CREATE INDEX IF NOT EXISTS idx_batches_created_at ON batches(created_at)`,

		`CREATE TABLE IF NOT EXISTS invoices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id INTEGER NOT NULL,
			awb_number TEXT NOT NULL,
			shipment_date TEXT,
			origin_pincode TEXT,
			destination_pincode TEXT,
			weight_billed REAL NOT NULL DEFAULT 0,
			actual_weight REAL NOT NULL DEFAULT 0,
			zone TEXT,
			base_freight REAL NOT NULL DEFAULT 0,
			cod_fee REAL NOT NULL DEFAULT 0,
			rto_fee REAL NOT NULL DEFAULT 0,
			fuel_surcharge REAL NOT NULL DEFAULT 0,
			other_surcharges REAL NOT NULL DEFAULT 0,
			gst_rate REAL NOT NULL DEFAULT 18,
			total_billed REAL NOT NULL DEFAULT 0,
			FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_batch ON invoices(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_awb ON invoices(awb_number)`,

		`CREATE TABLE IF NOT EXISTS discrepancies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_id INTEGER,
			batch_id INTEGER NOT NULL,
			awb_number TEXT NOT NULL,
			check_type TEXT NOT NULL,
			description TEXT NOT NULL,
			billed_value REAL,
			expected_value REAL,
			overcharge_amount REAL NOT NULL DEFAULT 0,
			severity TEXT NOT NULL,
			confidence_score REAL NOT NULL DEFAULT 0.8,
			confidence_reason TEXT,
			dispute_status TEXT NOT NULL DEFAULT 'pending',
			dispute_notes TEXT,
			dispute_updated_at DATETIME,
			FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_discrepancies_batch ON discrepancies(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_discrepancies_check_type ON discrepancies(check_type)`,
		`CREATE INDEX IF NOT EXISTS idx_discrepancies_severity ON discrepancies(severity)`,

		`CREATE TABLE IF NOT EXISTS saved_contracts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			provider TEXT NOT NULL,
			file_path TEXT,
			extracted_data TEXT,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id INTEGER,
			provider_name TEXT,
			alert_type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			severity TEXT NOT NULL,
			value REAL,
			threshold REAL,
			is_read INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_is_read ON alerts(is_read)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
