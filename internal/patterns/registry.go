package patterns

import "strings"

// Region selects which built-in pattern set a detector runs.
type Region string

const (
	// RegionUK includes the common patterns plus UK-specific identifiers.
	RegionUK Region = "UK"
	// RegionEU includes the common patterns plus IBAN.
	RegionEU Region = "EU"
	// RegionCommon is the conservative region-agnostic set.
	RegionCommon Region = "COMMON"
)

// ForRegion returns a fresh ordered slice of the built-in patterns for a
// region. Unknown regions fall back to the conservative common set. The
// returned slice is owned by the caller; the patterns themselves are shared
// read-only values.
func ForRegion(region Region) []Pattern {
	switch Region(strings.ToUpper(string(region))) {
	case RegionUK:
		return []Pattern{
			Email(),
			Phone(),
			CreditCard(),
			UKPostcode(),
			NHSNumber(),
			NINumber(),
			IBAN(),
		}
	case RegionEU:
		return []Pattern{
			Email(),
			Phone(),
			CreditCard(),
			IBAN(),
		}
	default:
		return []Pattern{
			Email(),
			Phone(),
			CreditCard(),
		}
	}
}
