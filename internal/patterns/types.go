package patterns

import "regexp"

// Pattern pairs a search expression with the validation and confidence
// policy for one PII type. Patterns are plain values: once built they are
// read-only and safe to share across any number of detectors.
type Pattern struct {
	// Name identifies the PII type, e.g. "email" or "nhs_number".
	Name string

	// Regexp is the compiled search expression. Go's regexp has no
	// lookaround, so expressions stay permissive and Validate carries the
	// exclusions the original lookaheads would have enforced.
	Regexp *regexp.Regexp

	// Priority orders evaluation only; higher runs first. Overlap between
	// patterns is settled first-accepted-wins in that order.
	Priority int

	// Confidence is the base score assigned to a validated match.
	Confidence float64

	// Validate rejects regex matches that fail checksum or format rules.
	// A nil Validate accepts every match.
	Validate func(string) bool

	// Score, when set, replaces Confidence with a value derived from the
	// surface features of the specific match.
	Score func(string) float64
}

// ConfidenceFor returns the confidence assigned to a matched value.
func (p Pattern) ConfidenceFor(value string) float64 {
	if p.Score != nil {
		return p.Score(value)
	}
	return p.Confidence
}

// Valid reports whether a matched value passes the pattern's validator.
func (p Pattern) Valid(value string) bool {
	if p.Validate == nil {
		return true
	}
	return p.Validate(value)
}
