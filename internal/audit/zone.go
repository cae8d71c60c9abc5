package audit

import (
	"regexp"
	"strings"
)

// zoneAliases maps the zone vocabulary seen across providers to the
// canonical letters A-E. Built once at init and never mutated.
var zoneAliases = map[string]string{
	// Words
	"local": "A", "same city": "A", "same_city": "A", "city": "A",
	"metro": "B", "tier1": "B", "tier 1": "B",
	"regional": "C", "region": "C", "tier2": "C", "tier 2": "C",
	"national": "D", "pan india": "D", "pan_india": "D", "tier3": "D", "tier 3": "D",
	"remote": "E", "special": "E", "oda": "E", "tier4": "E", "tier 4": "E",
	// Ordinal numbers
	"1": "A", "2": "B", "3": "C", "4": "D", "5": "E",
	// Roman numerals
	"i": "A", "ii": "B", "iii": "C", "iv": "D", "v": "E",
	// Delhivery z-codes
	"z1": "A", "z2": "B", "z3": "C", "z4": "D", "z5": "E",
	// "zone X" phrases
	"zone a": "A", "zone b": "B", "zone c": "C", "zone d": "D", "zone e": "E",
	"zone 1": "A", "zone 2": "B", "zone 3": "C", "zone 4": "D", "zone 5": "E",
}

var zoneCharPattern = regexp.MustCompile(`\b([A-Ea-e1-5])\b`)

// NormalizeZone canonicalizes an arbitrary provider zone label to a single
// letter A-E. Unrecognized labels come back uppercased and otherwise
// untouched. The function is pure and idempotent.
func NormalizeZone(z string) string {
	z = strings.TrimSpace(z)
	if z == "" {
		return ""
	}
	if len(z) == 1 {
		up := strings.ToUpper(z)
		if up >= "A" && up <= "E" {
			return up
		}
	}
	if letter, ok := zoneAliases[strings.ToLower(z)]; ok {
		return letter
	}
	// Partial match, e.g. "Sector 3" or "ZONE-D".
	if m := zoneCharPattern.FindStringSubmatch(z); m != nil {
		c := strings.ToUpper(m[1])
		if c >= "A" && c <= "E" {
			return c
		}
		if letter, ok := zoneAliases[strings.ToLower(c)]; ok {
			return letter
		}
	}
	return strings.ToUpper(z)
}
