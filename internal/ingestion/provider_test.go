package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectProvider(t *testing.T) {
	cases := map[string]string{
		"Delhivery Logistics Pvt Ltd\nInvoice Period: March 2024": "Delhivery",
		"BLUE DART EXPRESS LIMITED":                               "BlueDart",
		"Tax invoice issued by DTDC courier":                      "DTDC",
		"Ecom Express Private Limited":                            "Ecom Express",
		"xpressbees surface shipment report":                      "XpressBees",
		"FedEx International Priority":                            "FedEx",
		"Some Courier Nobody Knows":                               "Unknown",
		"": "Unknown",
	}
	for text, want := range cases {
		assert.Equal(t, want, DetectProvider(text), "text %q", text)
	}
}
