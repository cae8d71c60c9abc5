package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContractCSV(t *testing.T) {
	data := []byte(`Provider,Delhivery
COD Rate (%),2.5
RTO Rate (%),50
Fuel Surcharge (%),12
GST (%),18

Zone,Min Weight (kg),Max Weight (kg),Base Rate (INR),Per Extra Kg (INR)
A,0.0,0.5,35.00,0.00
A,0.5,1.0,45.00,0.00
B,0.0,0.5,45.00,0.00
B,1.0,5.0,60.00,38.00
`)

	c, err := ParseContractCSV(data)
	require.NoError(t, err)

	assert.Equal(t, "Delhivery", c.Provider)
	assert.Equal(t, 2.5, c.CODRate)
	assert.Equal(t, "percentage", c.CODRateType)
	assert.Equal(t, 50.0, c.RTORate)
	assert.Equal(t, 12.0, c.FuelSurchargePct)
	assert.Equal(t, 18.0, c.GSTPct)

	require.Len(t, c.WeightSlabs, 4)
	assert.Equal(t, "A", c.WeightSlabs[0].Zone)
	assert.Equal(t, 35.0, c.WeightSlabs[0].BaseRate)
	assert.Equal(t, 38.0, c.WeightSlabs[3].PerExtraKg)
	assert.Equal(t, 5.0, c.WeightSlabs[3].MaxWeight)
}

func TestParseContractCSVRatesOnly(t *testing.T) {
	data := []byte(`COD Fee,3%
Fuel Levy,14
`)

	c, err := ParseContractCSV(data)
	require.NoError(t, err)
	assert.Equal(t, 3.0, c.CODRate)
	assert.Equal(t, 14.0, c.FuelSurchargePct)
	assert.Empty(t, c.WeightSlabs)
}

func TestParseContractCSVOpenEndedTopSlab(t *testing.T) {
	data := []byte(`Zone,Min Weight,Max Weight,Rate
C,0,1,75.00
C,1,,95.00
`)

	c, err := ParseContractCSV(data)
	require.NoError(t, err)
	require.Len(t, c.WeightSlabs, 2)
	assert.Greater(t, c.WeightSlabs[1].MaxWeight, 1e6)
}

func TestParseContractCSVEmpty(t *testing.T) {
	_, err := ParseContractCSV([]byte("Some Heading,Other\nfoo,bar\n"))
	assert.Error(t, err)
}
