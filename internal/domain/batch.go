package domain

import "time"

type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// Batch is one uploaded invoice+contract pair and the state of its audit
// run. Summary is nil until the batch completes.
type Batch struct {
	ID                int64         `json:"id"`
	InvoiceFile       string        `json:"invoice_file"`
	ContractFile      string        `json:"contract_file"`
	ProviderName      string        `json:"provider_name"`
	Status            BatchStatus   `json:"status"`
	TotalInvoices     int           `json:"total_invoices"`
	ProcessedInvoices int           `json:"processed_invoices"`
	ErrorMessage      string        `json:"error_message,omitempty"`
	Summary           *BatchSummary `json:"summary,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// BatchSummary aggregates one audit run. It is recomputed wholesale from
// the discrepancy and invoice lists every run, never patched incrementally.
type BatchSummary struct {
	TotalInvoices      int               `json:"total_invoices"`
	TotalDiscrepancies int               `json:"total_discrepancies"`
	TotalOvercharge    float64           `json:"total_overcharge"`
	TotalBilled        float64           `json:"total_billed"`
	OverchargeRate     float64           `json:"overcharge_rate"`
	SeverityCounts     map[Severity]int  `json:"severity_counts"`
	CheckTypeCounts    map[CheckType]int `json:"check_type_counts"`
}
