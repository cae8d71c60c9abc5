package domain

import "time"

type CheckType string

const (
	CheckDuplicateShipment      CheckType = "duplicate_shipment"
	CheckBaseFreightDeviation   CheckType = "base_freight_deviation"
	CheckFuelSurchargeMismatch  CheckType = "fuel_surcharge_mismatch"
	CheckRTOOvercharge          CheckType = "rto_overcharge"
	CheckCODFeeMismatch         CheckType = "cod_fee_mismatch"
	CheckNonContractedSurcharge CheckType = "non_contracted_surcharge"
	CheckWeightOvercharge       CheckType = "weight_overcharge"
	CheckGSTMiscalculation      CheckType = "gst_miscalculation"
	CheckArithmeticTotal        CheckType = "arithmetic_total_mismatch"
	CheckZoneMismatch           CheckType = "zone_mismatch"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type DisputeStatus string

const (
	DisputePending      DisputeStatus = "pending"
	DisputeRaised       DisputeStatus = "raised"
	DisputeAcknowledged DisputeStatus = "acknowledged"
	DisputeResolved     DisputeStatus = "resolved"
	DisputeRejected     DisputeStatus = "rejected"
)

// Discrepancy is one quantified finding from a single check on a single
// invoice line. OverchargeAmount is always >= 0 and rounded to 2 decimals;
// BilledValue/ExpectedValue are nil when they carry no meaning for the
// check (e.g. duplicate detection). The dispute fields are downstream
// workflow state and are never set by the audit engine itself.
type Discrepancy struct {
	ID               int64         `json:"id,omitempty"`
	InvoiceID        int64         `json:"invoice_id,omitempty"`
	BatchID          int64         `json:"batch_id,omitempty"`
	AWBNumber        string        `json:"awb_number"`
	CheckType        CheckType     `json:"check_type"`
	Description      string        `json:"description"`
	BilledValue      *float64      `json:"billed_value"`
	ExpectedValue    *float64      `json:"expected_value"`
	OverchargeAmount float64       `json:"overcharge_amount"`
	Severity         Severity      `json:"severity"`
	ConfidenceScore  float64       `json:"confidence_score"`
	ConfidenceReason string        `json:"confidence_reason"`
	DisputeStatus    DisputeStatus `json:"dispute_status,omitempty"`
	DisputeNotes     string        `json:"dispute_notes,omitempty"`
	DisputeUpdatedAt *time.Time    `json:"dispute_updated_at,omitempty"`
}
