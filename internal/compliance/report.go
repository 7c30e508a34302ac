package compliance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Report aggregates the results of a compliance check run.
type Report struct {
	GeneratedAt time.Time              `json:"generated_at" yaml:"generated_at"`
	Checks      []Result               `json:"checks" yaml:"checks"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Passed reports whether every check passed, warned or was skipped.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail || c.Status == StatusError {
			return false
		}
	}
	return true
}

// TotalChecks returns the number of checks run.
func (r *Report) TotalChecks() int { return len(r.Checks) }

func (r *Report) countStatus(s Status) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == s {
			n++
		}
	}
	return n
}

// PassedChecks returns the number of passing checks.
func (r *Report) PassedChecks() int { return r.countStatus(StatusPass) }

// FailedChecks returns the number of failed checks.
func (r *Report) FailedChecks() int { return r.countStatus(StatusFail) }

// WarningChecks returns the number of checks with warnings.
func (r *Report) WarningChecks() int { return r.countStatus(StatusWarning) }

// ErrorChecks returns the number of errored checks.
func (r *Report) ErrorChecks() int { return r.countStatus(StatusError) }

// SkippedChecks returns the number of skipped checks.
func (r *Report) SkippedChecks() int { return r.countStatus(StatusSkipped) }

// Failures returns all failed checks.
func (r *Report) Failures() []Result {
	var out []Result
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			out = append(out, c)
		}
	}
	return out
}

// reportEnvelope is the serialized shape shared by JSON and YAML output.
type reportEnvelope struct {
	GeneratedAt   string                 `json:"generated_at" yaml:"generated_at"`
	OverallStatus string                 `json:"overall_status" yaml:"overall_status"`
	Summary       reportSummary          `json:"summary" yaml:"summary"`
	Checks        []Result               `json:"checks" yaml:"checks"`
	Metadata      map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type reportSummary struct {
	Total    int `json:"total" yaml:"total"`
	Passed   int `json:"passed" yaml:"passed"`
	Failed   int `json:"failed" yaml:"failed"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Skipped  int `json:"skipped" yaml:"skipped"`
}

func (r *Report) envelope() reportEnvelope {
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	return reportEnvelope{
		GeneratedAt:   r.GeneratedAt.Format(time.RFC3339),
		OverallStatus: status,
		Summary: reportSummary{
			Total:    r.TotalChecks(),
			Passed:   r.PassedChecks(),
			Failed:   r.FailedChecks(),
			Warnings: r.WarningChecks(),
			Errors:   r.ErrorChecks(),
			Skipped:  r.SkippedChecks(),
		},
		Checks:   r.Checks,
		Metadata: r.Metadata,
	}
}

// ToJSON renders the report as indented JSON.
func (r *Report) ToJSON() (string, error) {
	out, err := json.MarshalIndent(r.envelope(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(out), nil
}

// ToYAML renders the report as YAML.
func (r *Report) ToYAML() (string, error) {
	out, err := yaml.Marshal(r.envelope())
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return string(out), nil
}

var statusSymbols = map[Status]string{
	StatusPass:    "[PASS]",
	StatusFail:    "[FAIL]",
	StatusWarning: "[WARN]",
	StatusError:   "[ERR] ",
	StatusSkipped: "[SKIP]",
}

// ToText renders the report as a human-readable summary.
func (r *Report) ToText(includeRemediation bool) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	sep := strings.Repeat("-", 40)

	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}

	fmt.Fprintf(&b, "%s\nGDPR COMPLIANCE REPORT\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Overall Status: %s\n\n", status)

	fmt.Fprintf(&b, "SUMMARY\n%s\n", sep)
	fmt.Fprintf(&b, "Total Checks:  %d\n", r.TotalChecks())
	fmt.Fprintf(&b, "  Passed:      %d\n", r.PassedChecks())
	fmt.Fprintf(&b, "  Failed:      %d\n", r.FailedChecks())
	fmt.Fprintf(&b, "  Warnings:    %d\n", r.WarningChecks())
	fmt.Fprintf(&b, "  Errors:      %d\n", r.ErrorChecks())
	fmt.Fprintf(&b, "  Skipped:     %d\n\n", r.SkippedChecks())

	fmt.Fprintf(&b, "CHECK RESULTS\n%s\n", sep)
	for _, c := range r.Checks {
		fmt.Fprintf(&b, "%s %s: %s\n", statusSymbols[c.Status], c.Name, c.Message)
		if includeRemediation && c.Remediation != "" {
			fmt.Fprintf(&b, "       Remediation: %s\n", c.Remediation)
		}
	}

	b.WriteString("\n" + rule + "\n")
	return b.String()
}
