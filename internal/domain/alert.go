package domain

import "time"

type AlertType string

const (
	AlertHighOverchargeRate      AlertType = "high_overcharge_rate"
	AlertModerateOverchargeRate  AlertType = "moderate_overcharge_rate"
	AlertLargeAbsoluteOvercharge AlertType = "large_absolute_overcharge"
	AlertMultipleCritical        AlertType = "multiple_critical"
	AlertDuplicateShipments      AlertType = "duplicate_shipments"
)

// Alert is an operational alert derived from a batch's summary.
type Alert struct {
	ID           int64     `json:"id"`
	BatchID      int64     `json:"batch_id,omitempty"`
	ProviderName string    `json:"provider_name,omitempty"`
	AlertType    AlertType `json:"alert_type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Severity     Severity  `json:"severity"`
	Value        float64   `json:"value"`
	Threshold    float64   `json:"threshold"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}
