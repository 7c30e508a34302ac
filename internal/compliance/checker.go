package compliance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Checker runs a suite of GDPR compliance checks against document
// metadata and the audit trail.
type Checker struct {
	retentionDays int
	checks        []Check
	logger        *zap.Logger
}

// NewChecker creates a checker with the default check suite plus any
// custom checks.
func NewChecker(retentionDays int, log *zap.Logger, custom ...Check) *Checker {
	checks := []Check{
		NewInventoryCheck(),
		NewRetentionCheck(retentionDays),
		NewErasureCheck(),
	}
	checks = append(checks, custom...)

	return &Checker{
		retentionDays: retentionDays,
		checks:        checks,
		logger:        log,
	}
}

// Checks returns the configured check suite.
func (c *Checker) Checks() []Check {
	return c.checks
}

// AddCheck appends a custom check.
func (c *Checker) AddCheck(check Check) {
	c.checks = append(c.checks, check)
}

// RunAll executes every check and aggregates the results into a report.
func (c *Checker) RunAll(ctx context.Context, cc *Context) *Report {
	if cc == nil {
		cc = &Context{}
	}
	if cc.CheckPeriodDays <= 0 {
		cc.CheckPeriodDays = 90
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Metadata: map[string]interface{}{
			"retention_days":    c.retentionDays,
			"document_count":    len(cc.Documents),
			"check_period_days": cc.CheckPeriodDays,
		},
	}

	for _, check := range c.checks {
		result := c.runOne(ctx, check, cc)
		report.Checks = append(report.Checks, result)
		c.logger.Debug("Compliance check finished",
			zap.String("check", result.Name),
			zap.String("status", string(result.Status)))
	}

	c.logger.Info("Compliance checks completed",
		zap.Int("total", report.TotalChecks()),
		zap.Int("failed", report.FailedChecks()),
		zap.Bool("passed", report.Passed()))
	return report
}

func (c *Checker) runOne(ctx context.Context, check Check, cc *Context) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = errored(check.Name(), fmt.Errorf("check panicked: %v", r))
		}
	}()
	return check.Run(ctx, cc)
}
