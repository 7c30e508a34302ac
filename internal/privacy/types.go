package privacy

import (
	"errors"
	"fmt"
)

// Level is a named confidence-threshold preset controlling how aggressively
// borderline matches are accepted.
type Level string

const (
	// LevelStrict admits the most matches (threshold 0.5).
	LevelStrict Level = "strict"
	// LevelModerate admits matches scoring at least 0.7.
	LevelModerate Level = "moderate"
	// LevelLenient admits only high-confidence matches (threshold 0.9).
	LevelLenient Level = "lenient"
)

// Strategy selects how a detection is turned into a substitute token.
type Strategy string

const (
	// StrategyToken produces numbered, reversible tokens like [EMAIL_1].
	StrategyToken Strategy = "token"
	// StrategyHash produces value-correlated tokens like [EMAIL_a3f5b9].
	StrategyHash Strategy = "hash"
	// StrategyCategory produces bare category tokens like [EMAIL]. Multiple
	// detections of one type collapse to the same token, so the mapping
	// only retains the last occurrence per type.
	StrategyCategory Strategy = "category"
)

// Configuration errors returned at construction time.
var (
	ErrUnknownLevel    = errors.New("unknown detection level")
	ErrUnknownStrategy = errors.New("unknown redaction strategy")
)

// ErrInvalidDetection marks detections built with an invalid span or an
// out-of-range confidence. It signals a logic defect in the producing code,
// never user input, so callers should fail fast on it.
var ErrInvalidDetection = errors.New("invalid detection")

// levelThresholds maps detection levels to the minimum confidence a match
// needs to be accepted. Strict deliberately has the lowest bar.
var levelThresholds = map[Level]float64{
	LevelStrict:   0.5,
	LevelModerate: 0.7,
	LevelLenient:  0.9,
}

// Detection represents a single accepted PII match in text. Detections are
// immutable values; Start and End are byte offsets into the scanned text at
// detection time and are not stable across text mutations.
type Detection struct {
	Type       string  `json:"type"`
	Value      string  `json:"-"` // never serialized; values are sensitive
	Start      int     `json:"start"`
	End        int     `json:"end"` // exclusive
	Confidence float64 `json:"confidence"`
}

// NewDetection builds a Detection, enforcing the span and confidence
// invariants at creation time rather than clamping silently.
func NewDetection(piiType, value string, start, end int, confidence float64) (Detection, error) {
	if start < 0 {
		return Detection{}, fmt.Errorf("%w: start %d must be non-negative", ErrInvalidDetection, start)
	}
	if end <= start {
		return Detection{}, fmt.Errorf("%w: end %d must be greater than start %d", ErrInvalidDetection, end, start)
	}
	if confidence < 0.0 || confidence > 1.0 {
		return Detection{}, fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidDetection, confidence)
	}
	return Detection{
		Type:       piiType,
		Value:      value,
		Start:      start,
		End:        end,
		Confidence: confidence,
	}, nil
}

// Stats summarizes a redaction pass for audit metadata.
type Stats struct {
	OriginalLength    int            `json:"original_length"`
	PIICount          int            `json:"pii_count"`
	PatternsUsed      int            `json:"patterns_used"`
	CharacterCoverage float64        `json:"pii_character_coverage"`
	AverageConfidence float64        `json:"average_confidence"`
	TypeCounts        map[string]int `json:"type_distribution"`
}

// RedactionResult is the outcome of a detect-and-redact pass. The Mapping is
// sensitive: it reverses the redaction and must be treated as a secret by
// callers, never logged or persisted alongside the redacted text.
type RedactionResult struct {
	RedactedText string            `json:"redacted_text"`
	Detections   []Detection       `json:"detections"`
	Mapping      map[string]string `json:"-"`
	Stats        Stats             `json:"stats"`
}

// PIICount returns the number of detections in the result.
func (r *RedactionResult) PIICount() int {
	return len(r.Detections)
}

// PIITypes returns the distinct detection types in the result.
func (r *RedactionResult) PIITypes() []string {
	seen := make(map[string]struct{})
	var types []string
	for _, d := range r.Detections {
		if _, ok := seen[d.Type]; !ok {
			seen[d.Type] = struct{}{}
			types = append(types, d.Type)
		}
	}
	return types
}

// DetectionsByType returns all detections of a specific PII type.
func (r *RedactionResult) DetectionsByType(piiType string) []Detection {
	var out []Detection
	for _, d := range r.Detections {
		if d.Type == piiType {
			out = append(out, d)
		}
	}
	return out
}
