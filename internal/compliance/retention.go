package compliance

import (
	"context"
	"fmt"
	"time"
)

// RetentionCheck verifies that documents stay within the retention
// period, per GDPR Article 5(1)(e) storage limitation.
type RetentionCheck struct {
	RetentionDays int
}

// NewRetentionCheck creates the check for the given retention period.
func NewRetentionCheck(retentionDays int) *RetentionCheck {
	return &RetentionCheck{RetentionDays: retentionDays}
}

// Name identifies the check in reports.
func (c *RetentionCheck) Name() string { return "retention_policy" }

type retentionEntry struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Days      int    `json:"days"`
}

// Run flags documents past the retention cutoff and those expiring
// within 30 days.
func (c *RetentionCheck) Run(ctx context.Context, cc *Context) Result {
	docs := cc.Documents
	if len(docs) == 0 {
		return Result{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No documents to check retention.",
			Details: map[string]interface{}{"document_count": 0},
		}
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -c.RetentionDays)
	expiringCutoff := now.AddDate(0, 0, -(c.RetentionDays - 30))

	var expired, expiringSoon []retentionEntry
	for _, d := range docs {
		if d.CreatedAt.IsZero() {
			continue
		}
		age := int(now.Sub(d.CreatedAt).Hours() / 24)
		switch {
		case d.CreatedAt.Before(cutoff):
			expired = append(expired, retentionEntry{
				ID:        d.ID,
				CreatedAt: d.CreatedAt.Format(time.RFC3339),
				Days:      age,
			})
		case d.CreatedAt.Before(expiringCutoff):
			expiringSoon = append(expiringSoon, retentionEntry{
				ID:        d.ID,
				CreatedAt: d.CreatedAt.Format(time.RFC3339),
				Days:      c.RetentionDays - age,
			})
		}
	}

	details := map[string]interface{}{
		"retention_days":      c.RetentionDays,
		"documents_checked":   len(docs),
		"expired_count":       len(expired),
		"expiring_soon_count": len(expiringSoon),
		"expired_documents":   truncate(expired, 10),
		"expiring_soon":       truncate(expiringSoon, 10),
	}

	if len(expired) > 0 {
		return Result{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("%d documents exceed retention period.", len(expired)),
			Details: details,
			Remediation: fmt.Sprintf(
				"Delete or archive %d documents that exceed the %d-day retention period.",
				len(expired), c.RetentionDays),
		}
	}

	if len(expiringSoon) > 0 {
		return Result{
			Name:        c.Name(),
			Status:      StatusWarning,
			Message:     fmt.Sprintf("%d documents expiring within 30 days.", len(expiringSoon)),
			Details:     details,
			Remediation: "Review and plan for deletion or archival of documents approaching retention limit.",
		}
	}

	return Result{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("All %d documents within retention period.", len(docs)),
		Details: details,
	}
}

func truncate(entries []retentionEntry, max int) []retentionEntry {
	if len(entries) > max {
		return entries[:max]
	}
	return entries
}
