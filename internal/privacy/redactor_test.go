package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
)

func mustDetection(t *testing.T, piiType, value string, start, end int) Detection {
	t.Helper()
	d, err := NewDetection(piiType, value, start, end, 0.95)
	if err != nil {
		t.Fatalf("bad test detection: %v", err)
	}
	return d
}

func TestNewRedactor(t *testing.T) {
	for _, s := range []Strategy{StrategyToken, StrategyHash, StrategyCategory} {
		if _, err := NewRedactor(s); err != nil {
			t.Errorf("NewRedactor(%q) failed: %v", s, err)
		}
	}

	if _, err := NewRedactor("xor"); err == nil {
		t.Error("unknown strategy accepted")
	}
}

func TestTokenStrategy(t *testing.T) {
	r, _ := NewRedactor(StrategyToken)
	text := "john@example.com or jane@example.com"
	items := []Detection{
		mustDetection(t, "email", "john@example.com", 0, 16),
		mustDetection(t, "email", "jane@example.com", 20, 36),
	}

	redacted, mapping := r.Redact(text, items)

	if redacted != "[EMAIL_1] or [EMAIL_2]" {
		t.Errorf("redacted = %q", redacted)
	}
	if mapping["[EMAIL_1]"] != "john@example.com" {
		t.Errorf("[EMAIL_1] maps to %q", mapping["[EMAIL_1]"])
	}
	if mapping["[EMAIL_2]"] != "jane@example.com" {
		t.Errorf("[EMAIL_2] maps to %q", mapping["[EMAIL_2]"])
	}
}

func TestTokenStrategyCountsPerType(t *testing.T) {
	r, _ := NewRedactor(StrategyToken)
	text := "a@b.co 07700900123 c@d.co"
	items := []Detection{
		mustDetection(t, "email", "a@b.co", 0, 6),
		mustDetection(t, "phone", "07700900123", 7, 18),
		mustDetection(t, "email", "c@d.co", 19, 25),
	}

	redacted, _ := r.Redact(text, items)
	if redacted != "[EMAIL_1] [PHONE_1] [EMAIL_2]" {
		t.Errorf("redacted = %q", redacted)
	}
}

func TestHashStrategy(t *testing.T) {
	r, _ := NewRedactor(StrategyHash)
	text := "john@example.com met john@example.com"
	items := []Detection{
		mustDetection(t, "email", "john@example.com", 0, 16),
		mustDetection(t, "email", "john@example.com", 21, 37),
	}

	redacted, mapping := r.Redact(text, items)

	sum := sha256.Sum256([]byte("john@example.com"))
	want := fmt.Sprintf("[EMAIL_%s]", hex.EncodeToString(sum[:])[:6])

	// Identical values hash to the identical token wherever they appear,
	// so correlation survives redaction.
	if redacted != want+" met "+want {
		t.Errorf("redacted = %q, want two occurrences of %q", redacted, want)
	}
	if len(mapping) != 1 {
		t.Errorf("mapping has %d keys, want 1", len(mapping))
	}
	if mapping[want] != "john@example.com" {
		t.Errorf("%s maps to %q", want, mapping[want])
	}
}

func TestCategoryStrategy(t *testing.T) {
	r, _ := NewRedactor(StrategyCategory)
	text := "john@example.com or jane@example.com"
	items := []Detection{
		mustDetection(t, "email", "john@example.com", 0, 16),
		mustDetection(t, "email", "jane@example.com", 20, 36),
	}

	redacted, mapping := r.Redact(text, items)

	if redacted != "[EMAIL] or [EMAIL]" {
		t.Errorf("redacted = %q", redacted)
	}
	if strings.Count(redacted, "[EMAIL]") != 2 {
		t.Errorf("want exactly two identical category tokens, got %q", redacted)
	}
	// Category collapses occurrences, so the mapping keeps one key per
	// type and the last processed occurrence wins.
	if len(mapping) != 1 {
		t.Fatalf("mapping has %d keys, want 1", len(mapping))
	}
	if mapping["[EMAIL]"] != "jane@example.com" {
		t.Errorf("[EMAIL] maps to %q, want last occurrence", mapping["[EMAIL]"])
	}
}

func TestRedactEmptyDetections(t *testing.T) {
	r, _ := NewRedactor(StrategyToken)
	redacted, mapping := r.Redact("untouched", nil)
	if redacted != "untouched" {
		t.Errorf("redacted = %q", redacted)
	}
	if len(mapping) != 0 {
		t.Errorf("mapping = %v, want empty", mapping)
	}
}

func TestRedactUnsortedInput(t *testing.T) {
	// The redactor sorts internally, so callers may hand detections in any
	// order without disturbing sequence numbers or offsets.
	r, _ := NewRedactor(StrategyToken)
	text := "a@b.co then c@d.co"
	items := []Detection{
		mustDetection(t, "email", "c@d.co", 12, 18),
		mustDetection(t, "email", "a@b.co", 0, 6),
	}

	redacted, mapping := r.Redact(text, items)
	if redacted != "[EMAIL_1] then [EMAIL_2]" {
		t.Errorf("redacted = %q", redacted)
	}
	if mapping["[EMAIL_1]"] != "a@b.co" || mapping["[EMAIL_2]"] != "c@d.co" {
		t.Errorf("mapping = %v", mapping)
	}
}

func TestRestore(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		r, _ := NewRedactor(StrategyToken)
		text := "john@example.com rang 07700 900123"
		items := []Detection{
			mustDetection(t, "email", "john@example.com", 0, 16),
			mustDetection(t, "phone", "07700 900123", 22, 34),
		}
		redacted, mapping := r.Redact(text, items)
		if got := Restore(redacted, mapping); got != text {
			t.Errorf("Restore = %q, want %q", got, text)
		}
	})

	t.Run("EmptyMapping", func(t *testing.T) {
		if got := Restore("as is", map[string]string{}); got != "as is" {
			t.Errorf("Restore = %q", got)
		}
	})
}
