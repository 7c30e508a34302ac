package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Charlescifix/gdpr-safe-rag/internal/audit"
)

// ErasureCheck verifies right-to-erasure handling per GDPR Article 17:
// deletion requests are logged and their reasons are tracked.
type ErasureCheck struct{}

// NewErasureCheck creates the check.
func NewErasureCheck() *ErasureCheck {
	return &ErasureCheck{}
}

// Name identifies the check in reports.
func (c *ErasureCheck) Name() string { return "erasure_capability" }

// Run inspects deletion events from the audit trail.
func (c *ErasureCheck) Run(ctx context.Context, cc *Context) Result {
	if cc.Audit == nil {
		return skipped(c.Name(), "no audit logger provided")
	}

	period := cc.CheckPeriodDays
	if period <= 0 {
		period = 90
	}

	events, err := cc.Audit.Query(ctx, audit.Filters{
		EventType: string(audit.EventDeletion),
		StartDate: time.Now().UTC().AddDate(0, 0, -period),
		Limit:     1000,
	})
	if err != nil {
		return errored(c.Name(), fmt.Errorf("failed to query deletion events: %w", err))
	}

	if len(events) == 0 {
		return Result{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No deletion requests in check period.",
			Details: map[string]interface{}{
				"check_period_days": period,
				"deletion_count":    0,
			},
		}
	}

	byReason := make(map[string]int)
	users := make(map[string]struct{})
	for _, e := range events {
		reason := "unknown"
		if e.Data != "" {
			var data map[string]interface{}
			if err := json.Unmarshal([]byte(e.Data), &data); err == nil {
				if r, ok := data["reason"].(string); ok && r != "" {
					reason = r
				}
			}
		}
		byReason[reason]++
		if e.UserID != "" {
			users[e.UserID] = struct{}{}
		}
	}

	details := map[string]interface{}{
		"check_period_days":                period,
		"total_deletions":                  len(events),
		"deletions_by_reason":              byReason,
		"unique_users_requesting_deletion": len(users),
		"user_request_count":               byReason["user_request"],
	}

	if userRequests := byReason["user_request"]; float64(userRequests) > float64(len(events))*0.5 {
		return Result{
			Name:        c.Name(),
			Status:      StatusWarning,
			Message:     fmt.Sprintf("High volume of user deletion requests (%d).", userRequests),
			Details:     details,
			Remediation: "Review data collection practices if many users are requesting data deletion.",
		}
	}

	return Result{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Erasure capability verified: %d deletions logged.", len(events)),
		Details: details,
	}
}
