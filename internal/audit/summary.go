package audit

import (
	"fmt"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

// Summarize recomputes batch metrics wholesale from the invoice and
// finding lists. Pure: the same inputs always produce the same summary.
func Summarize(invoices []domain.Invoice, findings []domain.Discrepancy) domain.BatchSummary {
	s := domain.BatchSummary{
		TotalInvoices:      len(invoices),
		TotalDiscrepancies: len(findings),
		SeverityCounts:     make(map[domain.Severity]int),
		CheckTypeCounts:    make(map[domain.CheckType]int),
	}

	for _, inv := range invoices {
		s.TotalBilled += inv.TotalBilled
	}
	for _, d := range findings {
		s.TotalOvercharge += d.OverchargeAmount
		s.SeverityCounts[d.Severity]++
		s.CheckTypeCounts[d.CheckType]++
	}

	s.TotalBilled = round2(s.TotalBilled)
	s.TotalOvercharge = round2(s.TotalOvercharge)
	if s.TotalBilled > 0 {
		s.OverchargeRate = round2(s.TotalOvercharge / s.TotalBilled * 100)
	}
	return s
}

// DeriveAlerts evaluates every alert rule independently against a batch
// summary; all rules that apply produce an alert.
func DeriveAlerts(batchID int64, provider string, s domain.BatchSummary) []domain.Alert {
	var alerts []domain.Alert

	switch {
	case s.OverchargeRate > 10:
		alerts = append(alerts, domain.Alert{
			BatchID:      batchID,
			ProviderName: provider,
			AlertType:    domain.AlertHighOverchargeRate,
			Title:        "High Overcharge Rate Detected",
			Message:      fmt.Sprintf("Overcharge rate of %.1f%% exceeds 10%% threshold in batch #%d.", s.OverchargeRate, batchID),
			Severity:     domain.SeverityCritical,
			Value:        s.OverchargeRate,
			Threshold:    10.0,
		})
	case s.OverchargeRate > 5:
		alerts = append(alerts, domain.Alert{
			BatchID:      batchID,
			ProviderName: provider,
			AlertType:    domain.AlertModerateOverchargeRate,
			Title:        "Moderate Overcharge Rate",
			Message:      fmt.Sprintf("Overcharge rate of %.1f%% exceeds 5%% threshold in batch #%d.", s.OverchargeRate, batchID),
			Severity:     domain.SeverityHigh,
			Value:        s.OverchargeRate,
			Threshold:    5.0,
		})
	}

	if s.TotalOvercharge > 5000 {
		alerts = append(alerts, domain.Alert{
			BatchID:      batchID,
			ProviderName: provider,
			AlertType:    domain.AlertLargeAbsoluteOvercharge,
			Title:        "Large Overcharge Amount",
			Message:      fmt.Sprintf("Total overcharge of ₹%.2f exceeds ₹5,000 in batch #%d.", s.TotalOvercharge, batchID),
			Severity:     domain.SeverityCritical,
			Value:        s.TotalOvercharge,
			Threshold:    5000.0,
		})
	}

	if criticals := s.SeverityCounts[domain.SeverityCritical]; criticals >= 3 {
		alerts = append(alerts, domain.Alert{
			BatchID:      batchID,
			ProviderName: provider,
			AlertType:    domain.AlertMultipleCritical,
			Title:        "Multiple Critical Discrepancies",
			Message:      fmt.Sprintf("%d critical discrepancies in batch #%d.", criticals, batchID),
			Severity:     domain.SeverityCritical,
			Value:        float64(criticals),
			Threshold:    3.0,
		})
	}

	if dups := s.CheckTypeCounts[domain.CheckDuplicateShipment]; dups > 0 {
		alerts = append(alerts, domain.Alert{
			BatchID:      batchID,
			ProviderName: provider,
			AlertType:    domain.AlertDuplicateShipments,
			Title:        "Duplicate AWBs Detected",
			Message:      fmt.Sprintf("%d duplicate AWB(s) in batch #%d.", dups, batchID),
			Severity:     domain.SeverityHigh,
			Value:        float64(dups),
			Threshold:    1.0,
		})
	}

	return alerts
}
