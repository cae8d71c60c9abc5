package analytics

import (
	"math"
	"sort"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

type MonthlyTrend struct {
	Month         string  `json:"month"`
	Invoices      int     `json:"invoices"`
	Overcharge    float64 `json:"overcharge"`
	Discrepancies int     `json:"discrepancies"`
}

type ProviderScorecard struct {
	Provider      string  `json:"provider"`
	Batches       int     `json:"batches"`
	Invoices      int     `json:"invoices"`
	Overcharge    float64 `json:"overcharge"`
	Discrepancies int     `json:"discrepancies"`
}

type CheckTypeTotal struct {
	CheckType  string  `json:"check_type"`
	Count      int     `json:"count"`
	Overcharge float64 `json:"overcharge"`
}

// Report is the cross-batch rollup served by the analytics endpoint.
type Report struct {
	TotalBatches       int                 `json:"total_batches"`
	TotalInvoices      int                 `json:"total_invoices"`
	TotalOvercharge    float64             `json:"total_overcharge"`
	AvgOverchargeRate  float64             `json:"avg_overcharge_rate"`
	MonthlyTrends      []MonthlyTrend      `json:"monthly_trends"`
	ProviderScorecards []ProviderScorecard `json:"provider_scorecards"`
	CheckTypeTotals    []CheckTypeTotal    `json:"check_type_totals"`
}

// Build aggregates completed batches and their findings into a Report.
// Everything is derived from the inputs; no queries happen here.
func Build(batches []domain.Batch, findings []domain.Discrepancy) *Report {
	report := &Report{
		MonthlyTrends:      []MonthlyTrend{},
		ProviderScorecards: []ProviderScorecard{},
		CheckTypeTotals:    []CheckTypeTotal{},
	}
	if len(batches) == 0 {
		return report
	}

	monthOf := make(map[int64]string, len(batches))
	providerOf := make(map[int64]string, len(batches))

	var totalInvoices int
	var totalBilled float64
	monthly := make(map[string]*MonthlyTrend)
	byProvider := make(map[string]*ProviderScorecard)

	for i := range batches {
		b := &batches[i]
		month := b.CreatedAt.Format("2006-01")
		provider := b.ProviderName
		if provider == "" {
			provider = "Unknown"
		}
		monthOf[b.ID] = month
		providerOf[b.ID] = provider
		totalInvoices += b.TotalInvoices

		var overcharge float64
		if b.Summary != nil {
			overcharge = b.Summary.TotalOvercharge
			totalBilled += b.Summary.TotalBilled
		}

		mt, ok := monthly[month]
		if !ok {
			mt = &MonthlyTrend{Month: month}
			monthly[month] = mt
		}
		mt.Invoices += b.TotalInvoices
		mt.Overcharge += overcharge

		ps, ok := byProvider[provider]
		if !ok {
			ps = &ProviderScorecard{Provider: provider}
			byProvider[provider] = ps
		}
		ps.Batches++
		ps.Invoices += b.TotalInvoices
		ps.Overcharge += overcharge
	}

	var totalOvercharge float64
	byCheck := make(map[string]*CheckTypeTotal)
	for i := range findings {
		d := &findings[i]
		totalOvercharge += d.OverchargeAmount

		if month, ok := monthOf[d.BatchID]; ok {
			monthly[month].Discrepancies++
		}
		if provider, ok := providerOf[d.BatchID]; ok {
			byProvider[provider].Discrepancies++
		}

		ct, ok := byCheck[string(d.CheckType)]
		if !ok {
			ct = &CheckTypeTotal{CheckType: string(d.CheckType)}
			byCheck[string(d.CheckType)] = ct
		}
		ct.Count++
		ct.Overcharge += d.OverchargeAmount
	}

	for _, mt := range monthly {
		mt.Overcharge = round2(mt.Overcharge)
		report.MonthlyTrends = append(report.MonthlyTrends, *mt)
	}
	sort.Slice(report.MonthlyTrends, func(i, j int) bool {
		return report.MonthlyTrends[i].Month < report.MonthlyTrends[j].Month
	})

	for _, ps := range byProvider {
		ps.Overcharge = round2(ps.Overcharge)
		report.ProviderScorecards = append(report.ProviderScorecards, *ps)
	}
	sort.Slice(report.ProviderScorecards, func(i, j int) bool {
		return report.ProviderScorecards[i].Provider < report.ProviderScorecards[j].Provider
	})

	for _, ct := range byCheck {
		ct.Overcharge = round2(ct.Overcharge)
		report.CheckTypeTotals = append(report.CheckTypeTotals, *ct)
	}
	sort.Slice(report.CheckTypeTotals, func(i, j int) bool {
		return report.CheckTypeTotals[i].Overcharge > report.CheckTypeTotals[j].Overcharge
	})

	report.TotalBatches = len(batches)
	report.TotalInvoices = totalInvoices
	report.TotalOvercharge = round2(totalOvercharge)
	if totalBilled > 0 {
		report.AvgOverchargeRate = round2(totalOvercharge / totalBilled * 100)
	}
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
