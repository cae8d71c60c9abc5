package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

// DiscrepancyCSV renders a batch's findings as a downloadable CSV.
func DiscrepancyCSV(findings []domain.Discrepancy) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"ID", "AWB Number", "Check Type", "Description", "Billed Value",
		"Expected Value", "Overcharge Amount (INR)", "Severity",
		"Confidence Score", "Dispute Status",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i := range findings {
		d := &findings[i]
		row := []string{
			strconv.FormatInt(d.ID, 10),
			d.AWBNumber,
			string(d.CheckType),
			d.Description,
			optionalAmount(d.BilledValue),
			optionalAmount(d.ExpectedValue),
			fmt.Sprintf("%.2f", d.OverchargeAmount),
			string(d.Severity),
			fmt.Sprintf("%.2f", d.ConfidenceScore),
			string(d.DisputeStatus),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// SummaryCSV renders batch-level metrics as Metric,Value rows.
func SummaryCSV(batch *domain.Batch, findings []domain.Discrepancy) ([]byte, error) {
	var totalOvercharge, overchargeRate float64
	if batch.Summary != nil {
		totalOvercharge = batch.Summary.TotalOvercharge
		overchargeRate = batch.Summary.OverchargeRate
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{
		{"Metric", "Value"},
		{"Batch ID", strconv.FormatInt(batch.ID, 10)},
		{"Provider", batch.ProviderName},
		{"Status", string(batch.Status)},
		{"Total Invoices", strconv.Itoa(batch.TotalInvoices)},
		{"Total Discrepancies", strconv.Itoa(len(findings))},
		{"Total Overcharge (INR)", fmt.Sprintf("%.2f", totalOvercharge)},
		{"Overcharge Rate (%)", fmt.Sprintf("%.2f", overchargeRate)},
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// PayoutCSV renders per-AWB payable amounts: total billed minus the summed
// overcharge across that AWB's findings.
func PayoutCSV(invoices []domain.Invoice, findings []domain.Discrepancy) ([]byte, error) {
	overchargeByAWB := make(map[string]float64)
	for i := range findings {
		overchargeByAWB[findings[i].AWBNumber] += findings[i].OverchargeAmount
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"AWB Number", "Total Billed (INR)", "Total Overcharge (INR)", "Payable Amount (INR)"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i := range invoices {
		inv := &invoices[i]
		overcharge := overchargeByAWB[inv.AWBNumber]
		row := []string{
			inv.AWBNumber,
			fmt.Sprintf("%.2f", inv.TotalBilled),
			fmt.Sprintf("%.2f", overcharge),
			fmt.Sprintf("%.2f", inv.TotalBilled-overcharge),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func optionalAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
