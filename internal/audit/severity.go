package audit

import "github.com/SrivathsanRaju/billcheck/internal/domain"

// severityByOvercharge buckets an overcharge amount (rupees) into a
// severity tier. Checks with a fixed severity bypass this bucket.
func severityByOvercharge(amount float64) domain.Severity {
	switch {
	case amount >= 500:
		return domain.SeverityCritical
	case amount >= 200:
		return domain.SeverityHigh
	case amount >= 50:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
