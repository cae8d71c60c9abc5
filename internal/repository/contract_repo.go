package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

type ContractRepo struct {
	db *sql.DB
}

func NewContractRepo(db *sql.DB) *ContractRepo {
	return &ContractRepo{db: db}
}

// Save persists a parsed contract for reuse across batches.
func (r *ContractRepo) Save(sc *domain.SavedContract) (int64, error) {
	extracted, err := json.Marshal(sc.Extracted)
	if err != nil {
		return 0, fmt.Errorf("marshal contract: %w", err)
	}
	if sc.CreatedAt == "" {
		sc.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	res, err := r.db.Exec(
		`INSERT INTO saved_contracts (name, provider, file_path, extracted_data, created_at)
		VALUES (?,?,?,?,?)`,
		sc.Name, sc.Provider, sc.FilePath, string(extracted), sc.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert contract: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	sc.ID = id
	return id, nil
}

func (r *ContractRepo) GetByID(id int64) (*domain.SavedContract, error) {
	row := r.db.QueryRow("SELECT * FROM saved_contracts WHERE id = ?", id)
	return scanSavedContract(row.Scan)
}

func (r *ContractRepo) List() ([]domain.SavedContract, error) {
	rows, err := r.db.Query("SELECT * FROM saved_contracts ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []domain.SavedContract
	for rows.Next() {
		sc, err := scanSavedContract(rows.Scan)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *sc)
	}
	return contracts, rows.Err()
}

func (r *ContractRepo) Delete(id int64) error {
	res, err := r.db.Exec("DELETE FROM saved_contracts WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanSavedContract(scan func(...any) error) (*domain.SavedContract, error) {
	var sc domain.SavedContract
	var pathNull, extractedNull sql.NullString

	if err := scan(&sc.ID, &sc.Name, &sc.Provider, &pathNull, &extractedNull, &sc.CreatedAt); err != nil {
		return nil, err
	}
	if pathNull.Valid {
		sc.FilePath = pathNull.String
	}
	if extractedNull.Valid && extractedNull.String != "" {
		// A contract that fails to decode is still listable; the zero
		// Contract simply resolves nothing.
		_ = json.Unmarshal([]byte(extractedNull.String), &sc.Extracted)
	}
	return &sc, nil
}
