package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// hashTokenLength is the number of hex characters of the value hash kept in
// hash-strategy tokens.
const hashTokenLength = 6

// Redactor converts detections into a redacted string and a token-to-value
// mapping using the strategy fixed at construction. A Redactor holds no
// per-call state and is safe for concurrent use.
type Redactor struct {
	strategy Strategy
}

// NewRedactor creates a redactor for the given strategy.
func NewRedactor(strategy Strategy) (*Redactor, error) {
	switch strategy {
	case StrategyToken, StrategyHash, StrategyCategory:
		return &Redactor{strategy: strategy}, nil
	default:
		return nil, fmt.Errorf("%w: %q (available: token, hash, category)", ErrUnknownStrategy, strategy)
	}
}

// Strategy returns the configured redaction strategy.
func (r *Redactor) Strategy() Strategy {
	return r.strategy
}

// token builds the substitute token for one detection. index is the 1-based
// occurrence number within the detection's type, counted in ascending start
// order.
func (r *Redactor) token(d Detection, index int) string {
	kind := strings.ToUpper(d.Type)
	switch r.strategy {
	case StrategyHash:
		sum := sha256.Sum256([]byte(d.Value))
		return fmt.Sprintf("[%s_%s]", kind, hex.EncodeToString(sum[:])[:hashTokenLength])
	case StrategyCategory:
		return fmt.Sprintf("[%s]", kind)
	default:
		return fmt.Sprintf("[%s_%d]", kind, index)
	}
}

// Redact replaces every detection span in text with its token and returns
// the redacted text plus the token-to-original mapping. Detections must not
// overlap; the detector guarantees that for its own output. Substitution
// runs right to left so pending spans keep valid offsets. Under the
// category strategy several detections share one token, and the mapping
// keeps only the last processed occurrence per type.
func (r *Redactor) Redact(text string, detections []Detection) (string, map[string]string) {
	if len(detections) == 0 {
		return text, map[string]string{}
	}

	ordered := make([]Detection, len(detections))
	copy(ordered, detections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	// Assign tokens in ascending start order so per-type sequence numbers
	// are stable, then record them by span start for the splice pass.
	mapping := make(map[string]string, len(ordered))
	tokensByStart := make(map[int]string, len(ordered))
	typeIndices := make(map[string]int)

	for _, d := range ordered {
		typeIndices[d.Type]++
		token := r.token(d, typeIndices[d.Type])
		mapping[token] = d.Value
		tokensByStart[d.Start] = token
	}

	// Splice right to left.
	redacted := text
	for i := len(ordered) - 1; i >= 0; i-- {
		d := ordered[i]
		redacted = redacted[:d.Start] + tokensByStart[d.Start] + redacted[d.End:]
	}

	return redacted, mapping
}

// Restore reverses a redaction by substituting every token with its mapped
// original value. Tokens are non-overlapping and non-nesting by
// construction, so substitution order across keys does not matter.
func Restore(redactedText string, mapping map[string]string) string {
	restored := redactedText
	for token, value := range mapping {
		restored = strings.ReplaceAll(restored, token, value)
	}
	return restored
}
