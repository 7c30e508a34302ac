package patterns

import (
	"regexp"

	"github.com/Charlescifix/gdpr-safe-rag/internal/validate"
)

var ibanRegexp = regexp.MustCompile(
	`(?i)\b[A-Z]{2}\d{2}[\s-]?(?:[A-Z0-9]{4}[\s-]?){2,7}[A-Z0-9]{1,4}\b`)

// IBAN matches International Bank Account Numbers (country code, two check
// digits, up to 30 BBAN characters), gated on the modulo-97 check.
func IBAN() Pattern {
	return Pattern{
		Name:       "iban",
		Regexp:     ibanRegexp,
		Priority:   7,
		Confidence: 0.85,
		Validate:   validate.IBAN,
		Score: func(match string) float64 {
			if validate.IBAN(match) {
				return 0.98
			}
			return 0.3
		},
	}
}
