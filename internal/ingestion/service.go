package ingestion

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/SrivathsanRaju/billcheck/internal/audit"
	"github.com/SrivathsanRaju/billcheck/internal/domain"
	"github.com/SrivathsanRaju/billcheck/internal/repository"
)

// Service runs the audit pipeline for an uploaded batch: parse the files,
// detect the provider, run every check and persist the result in one
// transaction. ProcessBatch is meant to run in its own goroutine per
// batch; batches share no mutable state.
type Service struct {
	batches *repository.BatchRepo
	results *repository.ResultWriter
	engine  *audit.Engine
}

func NewService(batches *repository.BatchRepo, results *repository.ResultWriter, engine *audit.Engine) *Service {
	return &Service{batches: batches, results: results, engine: engine}
}

// ProcessBatch drives one batch from pending to completed or failed. When
// contract is non-nil it is used directly (a saved contract); otherwise
// contractPath is parsed. Errors never escape: any failure marks the batch
// failed with the error message.
func (s *Service) ProcessBatch(batchID int64, invoicePath, contractPath string, contract *domain.Contract) {
	if err := s.process(batchID, invoicePath, contractPath, contract); err != nil {
		log.Printf("[ingestion] batch %d failed: %v", batchID, err)
		if markErr := s.batches.MarkFailed(batchID, err.Error()); markErr != nil {
			log.Printf("[ingestion] batch %d: mark failed: %v", batchID, markErr)
		}
	}
}

func (s *Service) process(batchID int64, invoicePath, contractPath string, contract *domain.Contract) error {
	if err := s.batches.MarkProcessing(batchID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	invoiceData, err := readSupported(invoicePath, "invoice")
	if err != nil {
		return err
	}

	invoices, err := ParseInvoiceCSV(invoiceData)
	if err != nil {
		return fmt.Errorf("parse invoice file: %w", err)
	}
	log.Printf("[ingestion] batch %d: parsed %d invoice lines", batchID, len(invoices))

	if contract == nil {
		contractData, err := readSupported(contractPath, "contract")
		if err != nil {
			return err
		}
		contract, err = ParseContractCSV(contractData)
		if err != nil {
			return fmt.Errorf("parse contract file: %w", err)
		}
	}

	provider := contract.Provider
	if provider == "" || provider == "Unknown" {
		provider = DetectProvider(string(invoiceData))
	}
	// Record the provider early so batch listings show it mid-processing.
	if err := s.batches.SetProvider(batchID, provider); err != nil {
		log.Printf("[ingestion] batch %d: set provider: %v", batchID, err)
	}

	findings, err := s.engine.Run(contract, invoices)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}

	summary := audit.Summarize(invoices, findings)
	alerts := audit.DeriveAlerts(batchID, provider, summary)

	if err := s.results.SaveRun(batchID, provider, invoices, findings, summary, alerts); err != nil {
		return fmt.Errorf("save results: %w", err)
	}

	log.Printf("[ingestion] batch %d completed: %d invoices, %d discrepancies, ₹%.2f overcharge",
		batchID, summary.TotalInvoices, summary.TotalDiscrepancies, summary.TotalOvercharge)
	return nil
}

// readSupported loads a CSV file, rejecting formats the pipeline cannot
// parse. PDFs and scans need an extraction step that is out of scope here.
func readSupported(path, role string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".txt":
	default:
		return nil, fmt.Errorf("unsupported %s format %q: only CSV is supported", role, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", role, err)
	}
	return data, nil
}
