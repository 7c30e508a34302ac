// Package validate contains the checksum and format validators backing the
// PII patterns. All functions are pure: they normalize their input (separator
// stripping, case folding) and return a plain pass/fail verdict.
package validate

import (
	"strings"
	"unicode"
)

// nhsWeights are the modulus-11 weights applied to the first nine digits.
var nhsWeights = [9]int{10, 9, 8, 7, 6, 5, 4, 3, 2}

// Luhn reports whether s passes the Luhn checksum used by payment card
// numbers. Non-digit characters are stripped first; the remaining digit
// count must be between 13 and 19 inclusive.
func Luhn(s string) bool {
	digits := stripNonDigits(s)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	total := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[len(digits)-1-i] - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		total += d
	}
	return total%10 == 0
}

// NHSNumber reports whether s is a valid NHS number. NHS numbers are ten
// digits (separators allowed) where the tenth digit is a modulus-11 check
// digit over the first nine, and the first digit is never zero.
func NHSNumber(s string) bool {
	digits := stripNonDigits(s)
	if len(digits) != 10 {
		return false
	}
	if digits[0] == '0' {
		return false
	}

	total := 0
	for i, w := range nhsWeights {
		total += int(digits[i]-'0') * w
	}

	check := 11 - total%11
	if check == 11 {
		check = 0
	}
	// A computed check digit of 10 means the number cannot exist.
	if check == 10 {
		return false
	}
	return check == int(digits[9]-'0')
}

// IBAN reports whether s passes the ISO 13616 modulo-97 check. Whitespace
// and hyphens are removed and the value is upper-cased before checking.
func IBAN(s string) bool {
	iban := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)

	if len(iban) < 15 || len(iban) > 34 {
		return false
	}
	if !isAlpha(iban[0]) || !isAlpha(iban[1]) {
		return false
	}
	if !isDigit(iban[2]) || !isDigit(iban[3]) {
		return false
	}

	// Rotate the country code and check digits to the end, expand letters
	// to two-digit values (A=10 .. Z=35), and take the whole numeral mod 97
	// with a rolling remainder so no big-integer arithmetic is needed.
	rearranged := iban[4:] + iban[:4]
	rem := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case isDigit(c):
			rem = (rem*10 + int(c-'0')) % 97
		case isAlpha(c):
			v := int(c-'A') + 10
			rem = (rem*100 + v) % 97
		default:
			return false
		}
	}
	return rem == 1
}

// niInvalidPrefixes are letter pairs never issued as NI number prefixes.
var niInvalidPrefixes = map[string]struct{}{
	"BG": {}, "GB": {}, "NK": {}, "KN": {}, "TN": {}, "NT": {}, "ZZ": {},
}

// NINumber reports whether s is a well-formed UK National Insurance number:
// two prefix letters, six digits and a suffix letter A-D, with the
// prohibited prefix letters and combinations excluded. This is a
// format-only check; NI numbers carry no checksum.
func NINumber(s string) bool {
	ni := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)

	if len(ni) != 9 {
		return false
	}
	if !isAlpha(ni[0]) || !isAlpha(ni[1]) {
		return false
	}
	for i := 2; i < 8; i++ {
		if !isDigit(ni[i]) {
			return false
		}
	}
	if ni[8] < 'A' || ni[8] > 'D' {
		return false
	}

	if _, bad := niInvalidPrefixes[ni[:2]]; bad {
		return false
	}
	if strings.ContainsRune("DFIQUV", rune(ni[0])) {
		return false
	}
	if strings.ContainsRune("DFIOQUV", rune(ni[1])) {
		return false
	}
	return true
}

// UKPostcode reports whether s is a well-formed UK postcode: one or two
// area letters, a district digit optionally followed by a digit or letter,
// then a sector digit and two unit letters. "GIR 0AA" is the one literal
// exception to the grammar.
func UKPostcode(s string) bool {
	pc := strings.ToUpper(strings.Join(strings.Fields(s), " "))

	if pc == "GIR 0AA" || pc == "GIR0AA" {
		return true
	}

	// Split into outward and inward halves. The inward half is always a
	// digit followed by two letters.
	compact := strings.ReplaceAll(pc, " ", "")
	if len(compact) < 5 || len(compact) > 7 {
		return false
	}
	inward := compact[len(compact)-3:]
	outward := compact[:len(compact)-3]

	if !isDigit(inward[0]) || !isAlpha(inward[1]) || !isAlpha(inward[2]) {
		return false
	}

	switch len(outward) {
	case 2: // A9
		return isAlpha(outward[0]) && isDigit(outward[1])
	case 3: // A99, A9A, AA9
		if !isAlpha(outward[0]) {
			return false
		}
		if isAlpha(outward[1]) {
			return isDigit(outward[2])
		}
		return isDigit(outward[1]) && (isDigit(outward[2]) || isAlpha(outward[2]))
	case 4: // AA99, AA9A
		return isAlpha(outward[0]) && isAlpha(outward[1]) && isDigit(outward[2]) &&
			(isDigit(outward[3]) || isAlpha(outward[3]))
	default:
		return false
	}
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
