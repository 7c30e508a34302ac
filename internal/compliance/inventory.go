package compliance

import (
	"context"
	"fmt"
	"math"
)

// InventoryCheck verifies that a data inventory exists and PII detection
// runs at ingestion, per GDPR Article 30 record-keeping requirements.
type InventoryCheck struct {
	MinDocuments int
	MaxPIIRate   float64
}

// NewInventoryCheck creates the check with no minimum document count and
// no PII rate ceiling.
func NewInventoryCheck() *InventoryCheck {
	return &InventoryCheck{MaxPIIRate: 1.0}
}

// Name identifies the check in reports.
func (c *InventoryCheck) Name() string { return "data_inventory" }

// Run analyzes the document inventory.
func (c *InventoryCheck) Run(ctx context.Context, cc *Context) Result {
	docs := cc.Documents

	if len(docs) == 0 {
		if c.MinDocuments > 0 {
			return Result{
				Name:        c.Name(),
				Status:      StatusFail,
				Message:     fmt.Sprintf("No documents found. Expected at least %d.", c.MinDocuments),
				Remediation: "Ensure documents are being ingested and tracked.",
			}
		}
		return Result{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No documents to check.",
			Details: map[string]interface{}{"document_count": 0},
		}
	}

	var withPII, totalPII int
	piiTypes := make(map[string]int)
	for _, d := range docs {
		if d.PIIDetected {
			withPII++
		}
		totalPII += d.PIICount
		for t, n := range d.PIITypeCounts {
			piiTypes[t] += n
		}
	}
	piiRate := float64(withPII) / float64(len(docs))

	details := map[string]interface{}{
		"document_count":     len(docs),
		"documents_with_pii": withPII,
		"pii_detection_rate": math.Round(piiRate*10000) / 10000,
		"total_pii_items":    totalPII,
		"pii_types":          piiTypes,
	}

	if len(docs) < c.MinDocuments {
		return Result{
			Name:        c.Name(),
			Status:      StatusFail,
			Message:     fmt.Sprintf("Document count (%d) below minimum (%d).", len(docs), c.MinDocuments),
			Details:     details,
			Remediation: "Ensure all documents are being ingested and tracked.",
		}
	}

	if piiRate > c.MaxPIIRate {
		return Result{
			Name:        c.Name(),
			Status:      StatusWarning,
			Message:     fmt.Sprintf("High PII detection rate (%.1f%%). Review data handling.", piiRate*100),
			Details:     details,
			Remediation: "Review documents with PII and ensure proper redaction.",
		}
	}

	return Result{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Data inventory verified: %d documents, %.1f%% with PII.", len(docs), piiRate*100),
		Details: details,
	}
}
