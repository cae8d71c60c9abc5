package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SrivathsanRaju/billcheck/internal/ingestion"
	"github.com/SrivathsanRaju/billcheck/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	batchRepo *repository.BatchRepo,
	invoiceRepo *repository.InvoiceRepo,
	discRepo *repository.DiscrepancyRepo,
	contractRepo *repository.ContractRepo,
	alertRepo *repository.AlertRepo,
	ingestionSvc *ingestion.Service,
	uploadDir string,
) http.Handler {
	h := &Handlers{
		batchRepo:    batchRepo,
		invoiceRepo:  invoiceRepo,
		discRepo:     discRepo,
		contractRepo: contractRepo,
		alertRepo:    alertRepo,
		ingestionSvc: ingestionSvc,
		uploadDir:    uploadDir,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Ingestion.
		r.Post("/upload", h.Upload)

		// Batches.
		r.Get("/batches", h.ListBatches)
		r.Get("/batch/{id}", h.GetBatch)
		r.Get("/batch/{id}/report", h.GetBatchReport)
		r.Get("/batch/{id}/download/{dlType}", h.DownloadCSV)
		r.Get("/batch/{id}/dispute-letter", h.GetDisputeLetter)
		r.Delete("/batch/{id}", h.DeleteBatch)

		// Disputes.
		r.Get("/batch/{id}/disputes", h.ListBatchDisputes)
		r.Patch("/batch/{id}/disputes/bulk", h.BulkRaiseDisputes)
		r.Patch("/discrepancy/{id}/dispute", h.UpdateDispute)

		// Analytics.
		r.Get("/analytics", h.GetAnalytics)

		// Saved contracts.
		r.Post("/contracts/save", h.SaveContract)
		r.Get("/contracts", h.ListContracts)
		r.Delete("/contracts/{id}", h.DeleteContract)

		// Alerts.
		r.Get("/alerts", h.ListAlerts)
		r.Get("/alerts/count", h.AlertCount)
		r.Patch("/alerts/{id}/read", h.MarkAlertRead)
		r.Patch("/alerts/read-all", h.MarkAllAlertsRead)
	})

	return r
}
