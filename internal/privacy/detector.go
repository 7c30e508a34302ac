package privacy

import (
	"fmt"
	"sort"

	"github.com/Charlescifix/gdpr-safe-rag/internal/config"
	"github.com/Charlescifix/gdpr-safe-rag/internal/logger"
	"github.com/Charlescifix/gdpr-safe-rag/internal/patterns"
	"go.uber.org/zap"
)

// Detector scans text for PII using the pattern set of its region and
// produces detections and redactions. All configuration is fixed at
// construction; a Detector is a stateless transform and safe for unlimited
// concurrent use.
type Detector struct {
	region    patterns.Region
	level     Level
	threshold float64
	patterns  []patterns.Pattern
	redactor  *Redactor
	logger    *logger.Logger
}

// New creates a detector from configuration. Custom patterns are appended
// after the built-ins and take part in the same priority ordering. Unknown
// levels and strategies are configuration errors; an unknown region falls
// back to the conservative common pattern set.
func New(cfg config.PrivacyConfig, log *logger.Logger, custom ...patterns.Pattern) (*Detector, error) {
	level := Level(cfg.Level)
	threshold, ok := levelThresholds[level]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: strict, moderate, lenient)", ErrUnknownLevel, cfg.Level)
	}

	redactor, err := NewRedactor(Strategy(cfg.Strategy))
	if err != nil {
		return nil, err
	}

	active := patterns.ForRegion(patterns.Region(cfg.Region))
	active = append(active, custom...)

	// Evaluation order: descending priority, registry insertion order on
	// ties. The sort is stable so built-ins keep their relative order and
	// custom patterns stay behind built-ins of equal priority.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority > active[j].Priority
	})

	detector := &Detector{
		region:    patterns.Region(cfg.Region),
		level:     level,
		threshold: threshold,
		patterns:  active,
		redactor:  redactor,
		logger:    log,
	}

	log.Info("PII detector initialized",
		zap.String("region", cfg.Region),
		zap.String("level", cfg.Level),
		zap.String("strategy", cfg.Strategy),
		zap.Int("patterns", len(active)),
	)

	return detector, nil
}

// Region returns the configured region.
func (d *Detector) Region() patterns.Region {
	return d.region
}

// Level returns the configured detection level.
func (d *Detector) Level() Level {
	return d.level
}

// Patterns returns the active patterns in evaluation order.
func (d *Detector) Patterns() []patterns.Pattern {
	return d.patterns
}

// span is a claimed [start,end) region of the scanned text.
type span struct {
	start, end int
}

func (s span) overlaps(start, end int) bool {
	return !(end <= s.start || start >= s.end)
}

// Detect scans text and returns all accepted detections sorted by ascending
// start offset. Patterns are evaluated in descending priority order and
// spans are claimed first-accepted-wins, so no two returned detections ever
// overlap and exactly one type wins any contested span. Empty input yields
// an empty, non-nil slice.
func (d *Detector) Detect(text string) []Detection {
	detections := []Detection{}
	if text == "" {
		return detections
	}

	var claimed []span

	for _, p := range d.patterns {
		for _, loc := range p.Regexp.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]

			overlapping := false
			for _, c := range claimed {
				if c.overlaps(start, end) {
					overlapping = true
					break
				}
			}
			if overlapping {
				continue
			}

			value := text[start:end]
			if !p.Valid(value) {
				continue
			}

			confidence := p.ConfidenceFor(value)
			if confidence < d.threshold {
				continue
			}

			detections = append(detections, Detection{
				Type:       p.Name,
				Value:      value,
				Start:      start,
				End:        end,
				Confidence: confidence,
			})
			claimed = append(claimed, span{start: start, end: end})
		}
	}

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Start < detections[j].Start
	})

	return detections
}

// Redact detects and redacts all PII in text.
func (d *Detector) Redact(text string) RedactionResult {
	detections := d.Detect(text)
	redacted, mapping := d.redactor.Redact(text, detections)

	return RedactionResult{
		RedactedText: redacted,
		Detections:   detections,
		Mapping:      mapping,
		Stats:        d.calculateStats(text, detections),
	}
}

// Restore reverses a redaction using the mapping from a Redact call. This
// path is intended only for authorized-access code.
func (d *Detector) Restore(redactedText string, mapping map[string]string) string {
	return Restore(redactedText, mapping)
}

// ProcessDocument redacts a document and returns the redacted text together
// with audit-trail metadata. The metadata carries detection counts and type
// names only, never detected values or the token mapping.
func (d *Detector) ProcessDocument(document, documentID string) (string, map[string]interface{}) {
	result := d.Redact(document)

	metadata := map[string]interface{}{
		"pii_detected":    result.PIICount() > 0,
		"pii_count":       result.PIICount(),
		"pii_types":       result.PIITypes(),
		"detection_level": string(d.level),
		"region":          string(d.region),
		"pii_type_counts": result.Stats.TypeCounts,
	}
	if documentID != "" {
		metadata["document_id"] = documentID
	}

	d.logger.LogDetectionSummary(documentID, result.PIICount(), result.Stats.TypeCounts)

	return result.RedactedText, metadata
}

// calculateStats derives the redaction summary for audit metadata.
func (d *Detector) calculateStats(original string, detections []Detection) Stats {
	stats := Stats{
		OriginalLength: len(original),
		PIICount:       len(detections),
		PatternsUsed:   len(d.patterns),
		TypeCounts:     make(map[string]int),
	}

	if len(detections) == 0 {
		return stats
	}

	piiChars := 0
	confidenceSum := 0.0
	for _, det := range detections {
		piiChars += det.End - det.Start
		confidenceSum += det.Confidence
		stats.TypeCounts[det.Type]++
	}

	if len(original) > 0 {
		stats.CharacterCoverage = float64(piiChars) / float64(len(original))
	}
	stats.AverageConfidence = confidenceSum / float64(len(detections))

	return stats
}
