package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/SrivathsanRaju/billcheck/internal/api"
	"github.com/SrivathsanRaju/billcheck/internal/audit"
	"github.com/SrivathsanRaju/billcheck/internal/ingestion"
	"github.com/SrivathsanRaju/billcheck/internal/repository"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "billcheck.db"
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	tolerance := audit.DefaultTolerance
	if s := os.Getenv("AUDIT_TOLERANCE"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			log.Fatalf("Invalid AUDIT_TOLERANCE %q", s)
		}
		tolerance = v
	}

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	batchRepo := repository.NewBatchRepo(db)
	invoiceRepo := repository.NewInvoiceRepo(db)
	discRepo := repository.NewDiscrepancyRepo(db)
	contractRepo := repository.NewContractRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	resultWriter := repository.NewResultWriter(db)

	// Create services.
	engine := audit.NewEngine(tolerance)
	ingestionSvc := ingestion.NewService(batchRepo, resultWriter, engine)

	// Create router.
	router := api.NewRouter(batchRepo, invoiceRepo, discRepo, contractRepo, alertRepo, ingestionSvc, uploadDir)

	log.Printf("BillCheck Courier Invoice Auditor")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/upload")
	log.Printf("  GET    /api/v1/batches")
	log.Printf("  GET    /api/v1/batch/{id}")
	log.Printf("  GET    /api/v1/batch/{id}/report")
	log.Printf("  GET    /api/v1/batch/{id}/download/{dlType}")
	log.Printf("  GET    /api/v1/batch/{id}/dispute-letter")
	log.Printf("  GET    /api/v1/batch/{id}/disputes")
	log.Printf("  PATCH  /api/v1/batch/{id}/disputes/bulk")
	log.Printf("  PATCH  /api/v1/discrepancy/{id}/dispute")
	log.Printf("  DELETE /api/v1/batch/{id}")
	log.Printf("  GET    /api/v1/analytics")
	log.Printf("  POST   /api/v1/contracts/save")
	log.Printf("  GET    /api/v1/contracts")
	log.Printf("  DELETE /api/v1/contracts/{id}")
	log.Printf("  GET    /api/v1/alerts")
	log.Printf("  GET    /api/v1/alerts/count")
	log.Printf("  PATCH  /api/v1/alerts/{id}/read")
	log.Printf("  PATCH  /api/v1/alerts/read-all")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
