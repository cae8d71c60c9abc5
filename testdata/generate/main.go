package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

// Generates a synthetic rate card plus a provider invoice batch with known
// planted overcharges, so the audit pipeline has something deterministic to
// chew on end to end.

var contract = domain.Contract{
	Provider: "Delhivery",
	WeightSlabs: []domain.WeightSlab{
		{Zone: "A", MinWeight: 0, MaxWeight: 0.5, BaseRate: 35, PerExtraKg: 0},
		{Zone: "A", MinWeight: 0.5, MaxWeight: 1, BaseRate: 45, PerExtraKg: 0},
		{Zone: "A", MinWeight: 1, MaxWeight: 5, BaseRate: 45, PerExtraKg: 30},
		{Zone: "B", MinWeight: 0, MaxWeight: 0.5, BaseRate: 45, PerExtraKg: 0},
		{Zone: "B", MinWeight: 0.5, MaxWeight: 1, BaseRate: 60, PerExtraKg: 0},
		{Zone: "B", MinWeight: 1, MaxWeight: 5, BaseRate: 60, PerExtraKg: 38},
		{Zone: "C", MinWeight: 0, MaxWeight: 0.5, BaseRate: 55, PerExtraKg: 0},
		{Zone: "C", MinWeight: 0.5, MaxWeight: 1, BaseRate: 75, PerExtraKg: 0},
		{Zone: "C", MinWeight: 1, MaxWeight: 5, BaseRate: 75, PerExtraKg: 48},
		{Zone: "D", MinWeight: 0, MaxWeight: 0.5, BaseRate: 70, PerExtraKg: 0},
		{Zone: "D", MinWeight: 0.5, MaxWeight: 1, BaseRate: 95, PerExtraKg: 0},
		{Zone: "D", MinWeight: 1, MaxWeight: 5, BaseRate: 95, PerExtraKg: 60},
		{Zone: "E", MinWeight: 0, MaxWeight: 0.5, BaseRate: 90, PerExtraKg: 0},
		{Zone: "E", MinWeight: 0.5, MaxWeight: 1, BaseRate: 120, PerExtraKg: 0},
		{Zone: "E", MinWeight: 1, MaxWeight: 5, BaseRate: 120, PerExtraKg: 80},
	},
	CODRate:          2.5,
	CODRateType:      "percentage",
	RTORate:          50,
	FuelSurchargePct: 12,
	GSTPct:           18,
}

var zoneNames = map[string][]string{
	"A": {"A", "Zone A", "local"},
	"B": {"B", "Zone B", "regional"},
	"C": {"C", "metro", "Zone C"},
	"D": {"D", "rest of india", "roi"},
	"E": {"E", "special", "north east"},
}

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	writeContractCSV(filepath.Join(baseDir, "contract_delhivery.csv"))

	invoices := buildInvoices(rng, 120)
	writeInvoiceCSV(filepath.Join(baseDir, "invoices_delhivery.csv"), invoices)

	fmt.Println("Test data generation complete.")
}

func buildInvoices(rng *rand.Rand, count int) []domain.Invoice {
	startDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	zones := []string{"A", "B", "C", "D", "E"}

	var invoices []domain.Invoice
	for i := 1; i <= count; i++ {
		zone := zones[rng.Intn(len(zones))]
		weight := math.Round((0.2+rng.Float64()*4.3)*10) / 10

		base := expectedBase(zone, weight)
		fuel := round2(base * contract.FuelSurchargePct / 100)

		inv := domain.Invoice{
			AWBNumber:          fmt.Sprintf("DL%09d", 100000000+i),
			ShipmentDate:       startDate.AddDate(0, 0, rng.Intn(14)).Format("2006-01-02"),
			OriginPincode:      fmt.Sprintf("%06d", 110001+rng.Intn(80)),
			DestinationPincode: fmt.Sprintf("%06d", 400001+rng.Intn(80)),
			WeightBilled:       weight,
			ActualWeight:       weight,
			Zone:               pickZoneSpelling(rng, zone),
			BaseFreight:        base,
			FuelSurcharge:      fuel,
			GSTRate:            contract.GSTPct,
		}

		// 20% COD shipments, 5% RTO.
		if rng.Float64() < 0.20 {
			orderValue := 500 + rng.Float64()*2500
			inv.CODFee = round2(orderValue * contract.CODRate / 100)
		}
		if rng.Float64() < 0.05 {
			inv.RTOFee = round2(base * contract.RTORate / 100)
		}

		plantOvercharge(rng, &inv, i)

		subtotal := inv.BaseFreight + inv.CODFee + inv.RTOFee + inv.FuelSurcharge + inv.OtherSurcharges
		inv.TotalBilled = round2(subtotal * (1 + inv.GSTRate/100))

		// Every 40th invoice gets a broken total on top of everything else.
		if i%40 == 0 {
			inv.TotalBilled = round2(inv.TotalBilled + 75)
		}

		invoices = append(invoices, inv)

		// Every 25th AWB appears twice.
		if i%25 == 0 {
			invoices = append(invoices, inv)
		}
	}
	return invoices
}

// plantOvercharge distorts roughly a third of invoices in ways the checks
// should catch.
func plantOvercharge(rng *rand.Rand, inv *domain.Invoice, i int) {
	switch i % 9 {
	case 0:
		// Base freight inflated 10-30%.
		inv.BaseFreight = round2(inv.BaseFreight * (1.1 + rng.Float64()*0.2))
	case 1:
		// Fuel surcharge billed at an inflated percentage.
		inv.FuelSurcharge = round2(inv.BaseFreight * (contract.FuelSurchargePct + 4 + rng.Float64()*4) / 100)
	case 2:
		// Billed weight bumped a full kg over actual.
		inv.WeightBilled = round2(inv.ActualWeight + 1 + rng.Float64())
		inv.BaseFreight = expectedBase(normalizeSpelled(inv.Zone), inv.WeightBilled)
		inv.FuelSurcharge = round2(inv.BaseFreight * contract.FuelSurchargePct / 100)
	case 3:
		// Surcharge the contract knows nothing about.
		inv.OtherSurcharges = round2(20 + rng.Float64()*60)
	}
}

func expectedBase(zone string, weight float64) float64 {
	for _, s := range contract.WeightSlabs {
		if s.Zone != zone {
			continue
		}
		if weight > s.MinWeight && weight <= s.MaxWeight {
			if s.PerExtraKg > 0 {
				return round2(s.BaseRate + (weight-s.MinWeight)*s.PerExtraKg)
			}
			return s.BaseRate
		}
	}
	return 0
}

func pickZoneSpelling(rng *rand.Rand, zone string) string {
	spellings := zoneNames[zone]
	return spellings[rng.Intn(len(spellings))]
}

func normalizeSpelled(z string) string {
	for canon, spellings := range zoneNames {
		for _, s := range spellings {
			if s == z {
				return canon
			}
		}
	}
	return z
}

func writeContractCSV(path string) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{"Provider", contract.Provider})
	w.Write([]string{"COD Rate (%)", fmt.Sprintf("%.1f", contract.CODRate)})
	w.Write([]string{"RTO Rate (%)", fmt.Sprintf("%.1f", contract.RTORate)})
	w.Write([]string{"Fuel Surcharge (%)", fmt.Sprintf("%.1f", contract.FuelSurchargePct)})
	w.Write([]string{"GST (%)", fmt.Sprintf("%.1f", contract.GSTPct)})
	w.Write([]string{})
	w.Write([]string{"Zone", "Min Weight (kg)", "Max Weight (kg)", "Base Rate (INR)", "Per Extra Kg (INR)"})
	for _, s := range contract.WeightSlabs {
		w.Write([]string{
			s.Zone,
			fmt.Sprintf("%.1f", s.MinWeight),
			fmt.Sprintf("%.1f", s.MaxWeight),
			fmt.Sprintf("%.2f", s.BaseRate),
			fmt.Sprintf("%.2f", s.PerExtraKg),
		})
	}

	fmt.Printf("Generated contract with %d slabs -> %s\n", len(contract.WeightSlabs), filepath.Base(path))
}

func writeInvoiceCSV(path string, invoices []domain.Invoice) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Preamble lines before the header, like real provider exports.
	w.Write([]string{"Delhivery Logistics Pvt Ltd"})
	w.Write([]string{"Invoice Period: March 2024"})
	w.Write([]string{
		"AWB Number", "Shipment Date", "Origin Pincode", "Destination Pincode",
		"Weight (kg)", "Actual Weight (kg)", "Zone", "Base Freight (INR)",
		"COD Fee (INR)", "RTO Fee (INR)", "Fuel Surcharge (INR)",
		"Other Surcharges (INR)", "GST Rate (%)", "Total Billed (INR)",
	})
	for i := range invoices {
		inv := &invoices[i]
		w.Write([]string{
			inv.AWBNumber,
			inv.ShipmentDate,
			inv.OriginPincode,
			inv.DestinationPincode,
			fmt.Sprintf("%.2f", inv.WeightBilled),
			fmt.Sprintf("%.2f", inv.ActualWeight),
			inv.Zone,
			fmt.Sprintf("%.2f", inv.BaseFreight),
			amountOrBlank(inv.CODFee),
			amountOrBlank(inv.RTOFee),
			fmt.Sprintf("%.2f", inv.FuelSurcharge),
			amountOrBlank(inv.OtherSurcharges),
			fmt.Sprintf("%.1f", inv.GSTRate),
			fmt.Sprintf("%.2f", inv.TotalBilled),
		})
	}
	w.Write([]string{"Total", "", "", "", "", "", "", "", "", "", "", "", "", ""})

	fmt.Printf("Generated %d invoice lines -> %s\n", len(invoices), filepath.Base(path))
}

func amountOrBlank(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func findTestdataDir() string {
	candidates := []string{"testdata", "./testdata", "../../testdata"}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "testdata"
}
