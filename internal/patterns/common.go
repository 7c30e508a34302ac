package patterns

import (
	"regexp"
	"strings"

	"github.com/Charlescifix/gdpr-safe-rag/internal/validate"
)

var (
	emailRegexp = regexp.MustCompile(
		`(?i)\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)

	creditCardRegexp = regexp.MustCompile(
		`\b(?:\d[ -]*?){13,19}\b`)

	phoneRegexp = regexp.MustCompile(
		`\b(?:\+?[1-9]\d{0,2}[\s.-]?(?:\(?\d{2,4}\)?[\s.-]?)?\d{3,4}[\s.-]?\d{3,4})\b`)

	phoneSeparator = regexp.MustCompile(`[\s.-]`)
	nonDigit       = regexp.MustCompile(`\D`)
)

// Email matches most practical email address formats. The regex carries the
// bulk of the work; validation only rejects the shapes the expression is too
// permissive for.
func Email() Pattern {
	return Pattern{
		Name:       "email",
		Regexp:     emailRegexp,
		Priority:   10,
		Confidence: 0.95,
		Validate:   validateEmail,
	}
}

func validateEmail(match string) bool {
	at := strings.Index(match, "@")
	if at < 0 {
		return false
	}
	local, domain := match[:at], match[at+1:]
	if strings.Contains(local, "..") {
		return false
	}
	return strings.Contains(domain, ".")
}

// CreditCard matches 13-19 digit card numbers with optional separators and
// gates acceptance on the Luhn checksum. The scorer keeps the documented
// low-confidence branch for checksum failures even though detection-time
// gating means only passing values normally reach it.
func CreditCard() Pattern {
	return Pattern{
		Name:       "credit_card",
		Regexp:     creditCardRegexp,
		Priority:   5,
		Confidence: 0.9,
		Validate:   validate.Luhn,
		Score: func(match string) float64 {
			if validate.Luhn(match) {
				return 0.95
			}
			return 0.3
		},
	}
}

// Phone matches international and UK phone number shapes. Base confidence is
// deliberately low; the scorer raises it when the match carries strong
// surface signals such as a country-code prefix or UK dialling prefixes.
func Phone() Pattern {
	return Pattern{
		Name:       "phone",
		Regexp:     phoneRegexp,
		Priority:   3,
		Confidence: 0.7,
		Validate:   validatePhone,
		Score:      scorePhone,
	}
}

func validatePhone(match string) bool {
	digits := nonDigit.ReplaceAllString(match, "")
	return len(digits) >= 7 && len(digits) <= 15
}

func scorePhone(match string) float64 {
	if strings.HasPrefix(match, "+") {
		return 0.9
	}
	if phoneSeparator.MatchString(match) {
		return 0.8
	}

	digits := nonDigit.ReplaceAllString(match, "")
	if strings.HasPrefix(digits, "07") && len(digits) == 11 {
		return 0.9
	}
	if (strings.HasPrefix(digits, "01") || strings.HasPrefix(digits, "02")) &&
		(len(digits) == 10 || len(digits) == 11) {
		return 0.85
	}
	return 0.7
}
