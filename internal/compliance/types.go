package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/Charlescifix/gdpr-safe-rag/internal/audit"
)

// Status classifies the outcome of a compliance check.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of a single compliance check.
type Result struct {
	Name        string                 `json:"name" yaml:"name"`
	Status      Status                 `json:"status" yaml:"status"`
	Message     string                 `json:"message" yaml:"message"`
	Details     map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
	Remediation string                 `json:"remediation,omitempty" yaml:"remediation,omitempty"`
}

// Passed reports whether the result counts as passing; warnings pass.
func (r Result) Passed() bool {
	return r.Status == StatusPass || r.Status == StatusWarning
}

// DocumentRecord is the per-document metadata checks operate on. It
// carries detection statistics only, never document content.
type DocumentRecord struct {
	ID            string         `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	PIIDetected   bool           `json:"pii_detected"`
	PIICount      int            `json:"pii_count"`
	PIITypeCounts map[string]int `json:"pii_type_counts,omitempty"`
}

// Context carries the resources checks inspect.
type Context struct {
	Documents       []DocumentRecord
	Audit           *audit.Logger
	CheckPeriodDays int
}

// Check is a single GDPR compliance check.
type Check interface {
	// Name identifies the check in reports.
	Name() string

	// Run executes the check against the given context.
	Run(ctx context.Context, cc *Context) Result
}

func skipped(name, reason string) Result {
	return Result{
		Name:    name,
		Status:  StatusSkipped,
		Message: fmt.Sprintf("Check skipped: %s", reason),
	}
}

func errored(name string, err error) Result {
	return Result{
		Name:    name,
		Status:  StatusError,
		Message: fmt.Sprintf("Check error: %v", err),
		Details: map[string]interface{}{"error": err.Error()},
	}
}
