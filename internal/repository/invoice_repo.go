package repository

import (
	"database/sql"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

type InvoiceRepo struct {
	db *sql.DB
}

func NewInvoiceRepo(db *sql.DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

// GetByBatch returns a batch's invoices in insertion (audit) order.
func (r *InvoiceRepo) GetByBatch(batchID int64) ([]domain.Invoice, error) {
	rows, err := r.db.Query(
		"SELECT * FROM invoices WHERE batch_id = ? ORDER BY id", batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepo) CountByBatch(batchID int64) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM invoices WHERE batch_id = ?", batchID,
	).Scan(&count)
	return count, err
}

func scanInvoice(rows *sql.Rows) (*domain.Invoice, error) {
	var inv domain.Invoice
	var shipDate, origin, dest, zone sql.NullString

	err := rows.Scan(
		&inv.ID, &inv.BatchID, &inv.AWBNumber, &shipDate, &origin, &dest,
		&inv.WeightBilled, &inv.ActualWeight, &zone, &inv.BaseFreight,
		&inv.CODFee, &inv.RTOFee, &inv.FuelSurcharge, &inv.OtherSurcharges,
		&inv.GSTRate, &inv.TotalBilled,
	)
	if err != nil {
		return nil, err
	}

	inv.ShipmentDate = shipDate.String
	inv.OriginPincode = origin.String
	inv.DestinationPincode = dest.String
	inv.Zone = zone.String
	return &inv, nil
}
