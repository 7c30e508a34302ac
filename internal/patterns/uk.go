package patterns

import (
	"regexp"

	"github.com/Charlescifix/gdpr-safe-rag/internal/validate"
)

var (
	ukPostcodeRegexp = regexp.MustCompile(
		`(?i)\b(?:GIR\s?0AA|[A-Z]{1,2}[0-9][0-9A-Z]?\s?[0-9][A-Z]{2})\b`)

	nhsNumberRegexp = regexp.MustCompile(
		`\b[1-9]\d{2}[\s-]?\d{3}[\s-]?\d{4}\b`)

	// The NI expression matches the general two-letters/six-digits/suffix
	// shape; prefix exclusions that need lookahead live in the validator.
	niNumberRegexp = regexp.MustCompile(
		`(?i)\b[A-Z]{2}[\s-]?\d{2}[\s-]?\d{2}[\s-]?\d{2}[\s-]?[A-D]\b`)
)

// UKPostcode matches all standard UK postcode shapes plus the GIR 0AA
// special case.
func UKPostcode() Pattern {
	return Pattern{
		Name:       "uk_postcode",
		Regexp:     ukPostcodeRegexp,
		Priority:   8,
		Confidence: 0.9,
		Validate:   validate.UKPostcode,
	}
}

// NHSNumber matches ten-digit NHS numbers with optional space or hyphen
// grouping, gated on the modulus-11 check digit. The scorer keeps the
// low-confidence branch for failed checksums alongside the gating.
func NHSNumber() Pattern {
	return Pattern{
		Name:       "nhs_number",
		Regexp:     nhsNumberRegexp,
		Priority:   9,
		Confidence: 0.85,
		Validate:   validate.NHSNumber,
		Score: func(match string) float64 {
			if validate.NHSNumber(match) {
				return 0.98
			}
			return 0.3
		},
	}
}

// NINumber matches UK National Insurance numbers.
func NINumber() Pattern {
	return Pattern{
		Name:       "ni_number",
		Regexp:     niNumberRegexp,
		Priority:   9,
		Confidence: 0.9,
		Validate:   validate.NINumber,
	}
}
