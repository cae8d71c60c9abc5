package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

// slabColumns maps the rate-card table headers to canonical slab fields.
var slabColumns = map[string][]string{
	"zone":         {"zone", "delivery zone", "service zone"},
	"min_weight":   {"min weight (kg)", "min weight", "min_weight", "weight from", "from (kg)", "from"},
	"max_weight":   {"max weight (kg)", "max weight", "max_weight", "weight to", "to (kg)", "to"},
	"base_rate":    {"base rate (inr)", "base rate", "base_rate", "rate", "rate (inr)", "freight rate"},
	"per_extra_kg": {"per extra kg (inr)", "per extra kg", "per_extra_kg", "additional per kg", "per kg rate", "per_kg_rate"},
}

// rateKeys matches the key-value lines that carry contract-level rates. The
// first keyword contained in the row's label wins.
var rateKeys = []struct {
	keyword string
	apply   func(c *domain.Contract, v float64)
}{
	{"cod", func(c *domain.Contract, v float64) {
		c.CODRate = v
		c.CODRateType = "percentage"
	}},
	{"rto", func(c *domain.Contract, v float64) { c.RTORate = v }},
	{"fuel", func(c *domain.Contract, v float64) { c.FuelSurchargePct = v }},
	{"gst", func(c *domain.Contract, v float64) { c.GSTPct = v }},
}

// ParseContractCSV parses a rate-card CSV into a contract. The file mixes
// two shapes: key-value lines for the flat rates (COD, RTO, fuel, GST) and
// a tabular slab section for zone freight rates. Both are optional; an
// absent rate falls back to the audit defaults downstream.
func ParseContractCSV(data []byte) (*domain.Contract, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	contract := &domain.Contract{}
	var slabCols map[string]int

	lineNum := 0
	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(row) == 0 {
			continue
		}

		label := strings.ToLower(strings.TrimSpace(row[0]))
		if label == "" {
			continue
		}

		// Inside the slab table every row is a rate line until the shape
		// stops matching.
		if slabCols != nil {
			if slab, ok := parseSlabRow(row, slabCols); ok {
				contract.WeightSlabs = append(contract.WeightSlabs, slab)
				continue
			}
			slabCols = nil
		}

		if cols := mapHeaders(row, slabColumns); len(cols) >= 3 {
			if _, hasZone := cols["zone"]; hasZone {
				slabCols = cols
				continue
			}
		}

		if strings.Contains(label, "provider") && len(row) > 1 {
			contract.Provider = strings.TrimSpace(row[1])
			continue
		}

		if v, ok := rateValue(row); ok {
			for _, rk := range rateKeys {
				if strings.Contains(label, rk.keyword) {
					rk.apply(contract, v)
					break
				}
			}
		}
	}

	if len(contract.WeightSlabs) == 0 && contract.CODRate == 0 &&
		contract.RTORate == 0 && contract.FuelSurchargePct == 0 && contract.GSTPct == 0 {
		return nil, errors.New("no contract terms found in file")
	}
	return contract, nil
}

// rateValue finds the first numeric cell after the label.
func rateValue(row []string) (float64, bool) {
	for _, cell := range row[1:] {
		raw := strings.TrimSpace(cell)
		if raw == "" {
			continue
		}
		if v, ok := cleanFloat(strings.TrimSuffix(raw, "%")); ok {
			return v, true
		}
	}
	return 0, false
}

func parseSlabRow(row []string, cols map[string]int) (domain.WeightSlab, bool) {
	get := func(field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	zone := strings.ToUpper(get("zone"))
	baseRate, baseOK := cleanFloat(get("base_rate"))
	if zone == "" || !baseOK {
		return domain.WeightSlab{}, false
	}

	minW, _ := cleanFloat(get("min_weight"))
	maxW, maxOK := cleanFloat(get("max_weight"))
	if !maxOK {
		// Open-ended top slab.
		maxW = 1e9
	}
	perKg := floatOrZero(get("per_extra_kg"))

	return domain.WeightSlab{
		Zone:       zone,
		MinWeight:  minW,
		MaxWeight:  maxW,
		BaseRate:   baseRate,
		PerExtraKg: perKg,
	}, true
}
