package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SrivathsanRaju/billcheck/internal/domain"
)

func TestResolveBaseFreightFlatSlab(t *testing.T) {
	c := &domain.Contract{WeightSlabs: []domain.WeightSlab{
		{Zone: "A", MinWeight: 0, MaxWeight: 0.5, BaseRate: 80},
	}}

	rate, ok := ResolveBaseFreight(c, "A", 0.3)
	assert.True(t, ok)
	assert.Equal(t, 80.0, rate)

	// Boundary: weight equal to max is inside the slab.
	rate, ok = ResolveBaseFreight(c, "A", 0.5)
	assert.True(t, ok)
	assert.Equal(t, 80.0, rate)
}

func TestResolveBaseFreightPerExtraKg(t *testing.T) {
	c := &domain.Contract{WeightSlabs: []domain.WeightSlab{
		{Zone: "B", MinWeight: 0.5, MaxWeight: 1, BaseRate: 120, PerExtraKg: 20},
	}}

	rate, ok := ResolveBaseFreight(c, "B", 0.8)
	assert.True(t, ok)
	assert.InDelta(t, 126.0, rate, 0.001)

	// Half-open interval: the lower bound belongs to the slab below.
	_, ok = ResolveBaseFreight(c, "B", 0.5)
	assert.False(t, ok)
}

func TestResolveBaseFreightNormalizesZones(t *testing.T) {
	c := &domain.Contract{WeightSlabs: []domain.WeightSlab{
		{Zone: "metro", MinWeight: 0, MaxWeight: 1, BaseRate: 60},
	}}

	rate, ok := ResolveBaseFreight(c, "zone b", 0.7)
	assert.True(t, ok)
	assert.Equal(t, 60.0, rate)
}

func TestResolveBaseFreightAbsent(t *testing.T) {
	c := &domain.Contract{WeightSlabs: []domain.WeightSlab{
		{Zone: "A", MinWeight: 0, MaxWeight: 0.5, BaseRate: 80},
	}}

	_, ok := ResolveBaseFreight(c, "", 0.3)
	assert.False(t, ok, "empty zone")

	_, ok = ResolveBaseFreight(c, "A", 0)
	assert.False(t, ok, "zero weight")

	_, ok = ResolveBaseFreight(c, "A", 2.0)
	assert.False(t, ok, "no matching slab")

	_, ok = ResolveBaseFreight(&domain.Contract{}, "A", 0.3)
	assert.False(t, ok, "no slabs")
}

func TestResolveBaseFreightFirstMatchWins(t *testing.T) {
	c := &domain.Contract{WeightSlabs: []domain.WeightSlab{
		{Zone: "A", MinWeight: 0, MaxWeight: 1, BaseRate: 50},
		{Zone: "A", MinWeight: 0, MaxWeight: 1, BaseRate: 999},
	}}

	rate, ok := ResolveBaseFreight(c, "A", 0.9)
	assert.True(t, ok)
	assert.Equal(t, 50.0, rate)
}

func TestPercentageDefaults(t *testing.T) {
	empty := &domain.Contract{}
	assert.Equal(t, DefaultFuelPct, fuelPct(empty))
	assert.Equal(t, DefaultRTOPct, rtoPct(empty))
	assert.Equal(t, DefaultCODPct, codPct(empty))
	assert.Equal(t, DefaultGSTPct, gstPct(empty))

	c := &domain.Contract{FuelSurchargePct: 10, RTORate: 40, CODRate: 2, GSTPct: 12}
	assert.Equal(t, 10.0, fuelPct(c))
	assert.Equal(t, 40.0, rtoPct(c))
	assert.Equal(t, 2.0, codPct(c))
	assert.Equal(t, 12.0, gstPct(c))
}

func TestSeverityByOvercharge(t *testing.T) {
	assert.Equal(t, domain.SeverityCritical, severityByOvercharge(500))
	assert.Equal(t, domain.SeverityHigh, severityByOvercharge(499.99))
	assert.Equal(t, domain.SeverityHigh, severityByOvercharge(200))
	assert.Equal(t, domain.SeverityMedium, severityByOvercharge(199.99))
	assert.Equal(t, domain.SeverityMedium, severityByOvercharge(50))
	assert.Equal(t, domain.SeverityLow, severityByOvercharge(49.99))
}
