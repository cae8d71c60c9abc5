package audit

import (
	"math"
	"strings"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

// Default percentages applied only when the contract omits them. These are
// stable Indian-logistics norms; base freight deliberately has no default,
// see ResolveBaseFreight.
const (
	DefaultFuelPct = 12.0
	DefaultRTOPct  = 50.0
	DefaultCODPct  = 2.5
	DefaultGSTPct  = 18.0
)

// DefaultTolerance is the flat rupee tolerance below which a measured
// difference is treated as rounding noise.
const DefaultTolerance = 1.0

// weightToleranceKg is the industry-standard rounding allowance between
// billed and actual weight.
const weightToleranceKg = 0.5

// gstRelTolerance is the relative tolerance for the GST arithmetic check.
const gstRelTolerance = 0.03

// openEndedSlabMax marks a slab with no real upper bound; contract parsing
// writes 1e9 as the sentinel max for an open-ended top slab.
const openEndedSlabMax = 1e6

// ResolveBaseFreight looks up the contracted base freight for a (zone,
// weight) pair. The boolean is false when the contract has no slabs, the
// zone is empty, the weight is not positive, or no slab matches: freight
// rates are too provider-specific to guess, so the engine never invents
// one. When slabs overlap, the first match in list order wins.
func ResolveBaseFreight(c *domain.Contract, zone string, weight float64) (float64, bool) {
	if len(c.WeightSlabs) == 0 || strings.TrimSpace(zone) == "" || weight <= 0 {
		return 0, false
	}
	nz := NormalizeZone(zone)

	for _, slab := range c.WeightSlabs {
		if NormalizeZone(slab.Zone) != nz {
			continue
		}
		// Weight falls in (min, max]; the first slab starts from zero.
		inSlab := (slab.MinWeight == 0 && weight <= slab.MaxWeight) ||
			(slab.MinWeight > 0 && slab.MinWeight < weight && weight <= slab.MaxWeight)
		if !inSlab {
			continue
		}
		if slab.PerExtraKg > 0 {
			return round2(slab.BaseRate + (weight-slab.MinWeight)*slab.PerExtraKg), true
		}
		return slab.BaseRate, true
	}
	return 0, false
}

// baseReference is the freight amount surcharge percentages are computed
// against: the contract-resolved rate when a slab matches, otherwise the
// billed base freight.
func baseReference(inv *domain.Invoice, c *domain.Contract) (float64, bool) {
	zone := strings.TrimSpace(inv.Zone)
	if zone != "" && inv.WeightBilled > 0 {
		if expected, ok := ResolveBaseFreight(c, zone, inv.WeightBilled); ok {
			return expected, true
		}
	}
	if inv.BaseFreight > 0 {
		return inv.BaseFreight, true
	}
	return 0, false
}

func fuelPct(c *domain.Contract) float64 {
	if c.FuelSurchargePct > 0 {
		return c.FuelSurchargePct
	}
	return DefaultFuelPct
}

func rtoPct(c *domain.Contract) float64 {
	if c.RTORate > 0 {
		return c.RTORate
	}
	return DefaultRTOPct
}

func codPct(c *domain.Contract) float64 {
	if c.CODRate > 0 {
		return c.CODRate
	}
	return DefaultCODPct
}

func gstPct(c *domain.Contract) float64 {
	if c.GSTPct > 0 {
		return c.GSTPct
	}
	return DefaultGSTPct
}

// gstMultiplier is the gross-up factor applied to overcharges on taxable
// charges, so findings state the full recoverable amount including tax.
func gstMultiplier(c *domain.Contract) float64 {
	return 1 + gstPct(c)/100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func f64(v float64) *float64 {
	return &v
}
