package ingestion

import "strings"

// providerKeywords maps lowercase markers in invoice text to the canonical
// courier name. Order matters: more specific markers come before generic
// ones that could appear inside them.
var providerKeywords = []struct {
	keyword string
	name    string
}{
	{"bluedart", "BlueDart"},
	{"blue dart", "BlueDart"},
	{"delhivery", "Delhivery"},
	{"dtdc", "DTDC"},
	{"ekart", "Ekart"},
	{"xpressbees", "XpressBees"},
	{"xpress bees", "XpressBees"},
	{"shadowfax", "Shadowfax"},
	{"ecom express", "Ecom Express"},
	{"ecomexpress", "Ecom Express"},
	{"fedex", "FedEx"},
	{"dhl", "DHL"},
	{"smartr", "Smartr"},
	{"borzo", "Borzo"},
	{"dunzo", "Dunzo"},
	{"flipkart", "Flipkart Logistics"},
	{"amazon", "Amazon Shipping"},
	{"meesho", "Meesho Logistics"},
}

// DetectProvider scans raw invoice text for a known courier marker.
// Returns "Unknown" when nothing matches.
func DetectProvider(text string) string {
	lower := strings.ToLower(text)
	for _, pk := range providerKeywords {
		if strings.Contains(lower, pk.keyword) {
			return pk.name
		}
	}
	return "Unknown"
}
