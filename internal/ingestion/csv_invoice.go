package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

// invoiceColumns maps canonical invoice fields to the header spellings seen
// across provider exports. Matching is case-insensitive on the trimmed
// header.
var invoiceColumns = map[string][]string{
	"awb_number":          {"awb number", "awb", "awb_number", "tracking id", "tracking number", "shipment id"},
	"shipment_date":       {"shipment date", "date", "dispatch date", "booking date"},
	"origin_pincode":      {"origin pincode", "origin pin", "from pincode", "source pincode", "origin_pincode"},
	"destination_pincode": {"destination pincode", "dest pincode", "to pincode", "destination_pincode", "dest pin"},
	"weight_billed":       {"weight (kg)", "weight", "billed weight", "weight_billed", "chargeable weight"},
	"actual_weight":       {"actual weight (kg)", "actual weight", "actual_weight", "dead weight", "measured weight"},
	"zone":                {"zone", "delivery zone", "service zone"},
	"base_freight":        {"base freight (inr)", "base freight", "freight", "base_freight", "basic freight"},
	"cod_fee":             {"cod fee (inr)", "cod fee", "cod", "cod_fee", "cash on delivery"},
	"rto_fee":             {"rto fee (inr)", "rto fee", "rto", "rto_fee", "return fee"},
	"fuel_surcharge":      {"fuel surcharge (inr)", "fuel surcharge", "fuel", "fuel_surcharge", "fuel charge"},
	"other_surcharges":    {"other surcharges (inr)", "other surcharges", "other charges", "other_surcharges", "misc"},
	"gst_rate":            {"gst rate (%)", "gst rate", "gst%", "gst_rate", "tax rate"},
	"total_billed":        {"total billed (inr)", "total billed", "total", "total_billed", "invoice amount", "amount"},
}

// junkRowPrefixes mark footer/summary rows that sneak into provider CSVs.
var junkRowPrefixes = []string{"total", "note", "logistics", "invoice", "provider", "date:"}

// ParseInvoiceCSV parses a provider invoice CSV into normalized invoice
// lines. It tolerates preamble lines before the header, maps headers
// through the alias table, strips currency formatting from numeric cells
// and skips summary/footer rows.
func ParseInvoiceCSV(data []byte) ([]domain.Invoice, error) {
	lines := strings.Split(string(data), "\n")

	// Skip any preamble: the header is the first line with enough commas to
	// be tabular.
	start := 0
	for i, line := range lines {
		if strings.Count(line, ",") >= 4 {
			start = i
			break
		}
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[start:], "\n")))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := mapHeaders(header, invoiceColumns)
	if _, hasAWB := cols["awb_number"]; !hasAWB {
		if _, hasTotal := cols["total_billed"]; !hasTotal {
			return nil, errors.New("file does not look like an invoice: no AWB or total column")
		}
	}

	var invoices []domain.Invoice
	lineNum := 1
	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if isJunkRow(row) {
			continue
		}

		get := func(field string) string {
			idx, ok := cols[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		awb := get("awb_number")
		if awb == "" || strings.EqualFold(awb, "awb number") || strings.EqualFold(awb, "awb") {
			continue
		}

		gstRate, ok := cleanFloat(get("gst_rate"))
		if !ok || gstRate <= 0 {
			gstRate = 18.0
		}

		invoices = append(invoices, domain.Invoice{
			AWBNumber:          awb,
			ShipmentDate:       get("shipment_date"),
			OriginPincode:      get("origin_pincode"),
			DestinationPincode: get("destination_pincode"),
			WeightBilled:       floatOrZero(get("weight_billed")),
			ActualWeight:       floatOrZero(get("actual_weight")),
			Zone:               get("zone"),
			BaseFreight:        floatOrZero(get("base_freight")),
			CODFee:             floatOrZero(get("cod_fee")),
			RTOFee:             floatOrZero(get("rto_fee")),
			FuelSurcharge:      floatOrZero(get("fuel_surcharge")),
			OtherSurcharges:    floatOrZero(get("other_surcharges")),
			GSTRate:            gstRate,
			TotalBilled:        floatOrZero(get("total_billed")),
		})
	}

	return invoices, nil
}

// mapHeaders resolves canonical field names to column indexes through an
// alias table. The first alias that matches a header wins.
func mapHeaders(header []string, colMap map[string][]string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if _, taken := byName[h]; !taken {
			byName[h] = i
		}
	}

	cols := make(map[string]int)
	for field, aliases := range colMap {
		for _, alias := range aliases {
			if idx, ok := byName[alias]; ok {
				cols[field] = idx
				break
			}
		}
	}
	return cols
}

// cleanFloat parses a numeric cell, stripping thousands separators and
// currency markers. The boolean is false for empty or placeholder cells.
func cleanFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "-", "N/A", "n/a", "NA":
		return 0, false
	}
	for _, junk := range []string{",", "₹", "INR", "Rs.", "Rs"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func floatOrZero(s string) float64 {
	v, _ := cleanFloat(s)
	return v
}

func isJunkRow(row []string) bool {
	empty := true
	for _, v := range row {
		if strings.TrimSpace(v) != "" && strings.TrimSpace(v) != "-" {
			empty = false
			break
		}
	}
	if empty {
		return true
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	for _, prefix := range junkRowPrefixes {
		if strings.Contains(first, prefix) {
			return true
		}
	}
	return false
}
