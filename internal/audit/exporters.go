package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/segmentio/parquet-go"
)

// exportRow is the flat record shape used for CSV and Parquet export.
type exportRow struct {
	ID         string `csv:"id" parquet:"id" json:"id"`
	EventType  string `csv:"event_type" parquet:"event_type" json:"event_type"`
	Timestamp  string `csv:"timestamp" parquet:"timestamp" json:"timestamp"`
	UserID     string `csv:"user_id" parquet:"user_id" json:"user_id"`
	SessionID  string `csv:"session_id" parquet:"session_id" json:"session_id"`
	ResourceID string `csv:"resource_id" parquet:"resource_id" json:"resource_id"`
	Action     string `csv:"action" parquet:"action" json:"action"`
	Data       string `csv:"data" parquet:"data" json:"data"`
	Metadata   string `csv:"metadata" parquet:"metadata" json:"metadata"`
}

func toRow(e *Event) exportRow {
	return exportRow{
		ID:         e.ID,
		EventType:  e.EventType,
		Timestamp:  e.Timestamp.Format(time.RFC3339Nano),
		UserID:     e.UserID,
		SessionID:  e.SessionID,
		ResourceID: e.ResourceID,
		Action:     e.Action,
		Data:       e.Data,
		Metadata:   e.Metadata,
	}
}

// ExportCSV writes events as CSV with a header row.
func ExportCSV(w io.Writer, events []*Event) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "event_type", "timestamp", "user_id", "session_id", "resource_id", "action", "data", "metadata"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range events {
		row := toRow(e)
		record := []string{row.ID, row.EventType, row.Timestamp, row.UserID, row.SessionID, row.ResourceID, row.Action, row.Data, row.Metadata}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportJSON writes events as a JSON array.
func ExportJSON(w io.Writer, events []*Event, pretty bool) error {
	if events == nil {
		events = []*Event{}
	}
	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(events); err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	return nil
}

// ExportParquet writes events as a Parquet file.
func ExportParquet(w io.Writer, events []*Event) error {
	writer := parquet.NewGenericWriter[exportRow](w)

	rows := make([]exportRow, len(events))
	for i, e := range events {
		rows[i] = toRow(e)
	}

	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("failed to write Parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close Parquet writer: %w", err)
	}
	return nil
}

// Summary aggregates an event set for a reporting period.
type Summary struct {
	GeneratedAt     time.Time      `json:"generated_at" yaml:"generated_at"`
	PeriodStart     time.Time      `json:"period_start" yaml:"period_start"`
	PeriodEnd       time.Time      `json:"period_end" yaml:"period_end"`
	TotalEvents     int            `json:"total_events" yaml:"total_events"`
	EventsByType    map[string]int `json:"events_by_type" yaml:"events_by_type"`
	UniqueUsers     int            `json:"unique_users" yaml:"unique_users"`
	UniqueResources int            `json:"unique_resources" yaml:"unique_resources"`
	AccessEvents    int            `json:"access_events" yaml:"access_events"`
	DeletionEvents  int            `json:"deletion_events" yaml:"deletion_events"`
	ConsentEvents   int            `json:"consent_events" yaml:"consent_events"`
	ExportEvents    int            `json:"export_events" yaml:"export_events"`
}

// Summarize builds a Summary for events within the given period.
func Summarize(events []*Event, start, end time.Time) Summary {
	summary := Summary{
		GeneratedAt:  time.Now().UTC(),
		PeriodStart:  start,
		PeriodEnd:    end,
		TotalEvents:  len(events),
		EventsByType: make(map[string]int),
	}

	users := make(map[string]struct{})
	resources := make(map[string]struct{})
	for _, e := range events {
		summary.EventsByType[e.EventType]++
		if e.UserID != "" {
			users[e.UserID] = struct{}{}
		}
		if e.ResourceID != "" {
			resources[e.ResourceID] = struct{}{}
		}
	}

	summary.UniqueUsers = len(users)
	summary.UniqueResources = len(resources)
	summary.AccessEvents = summary.EventsByType[string(EventAccess)]
	summary.DeletionEvents = summary.EventsByType[string(EventDeletion)]
	summary.ConsentEvents = summary.EventsByType[string(EventConsentUpdate)]
	summary.ExportEvents = summary.EventsByType[string(EventExport)]
	return summary
}

// Text renders the summary as a human-readable audit report.
func (s Summary) Text() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	sep := strings.Repeat("-", 40)

	fmt.Fprintf(&b, "%s\nGDPR Compliance Audit Report\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Generated: %s\n", s.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Period: %s to %s\n\n", s.PeriodStart.Format(time.RFC3339), s.PeriodEnd.Format(time.RFC3339))

	fmt.Fprintf(&b, "SUMMARY\n%s\n", sep)
	fmt.Fprintf(&b, "Total Events: %d\n", s.TotalEvents)
	fmt.Fprintf(&b, "Unique Users: %d\n", s.UniqueUsers)
	fmt.Fprintf(&b, "Unique Resources: %d\n\n", s.UniqueResources)

	b.WriteString("Events by Type:\n")
	for _, t := range sortedKeys(s.EventsByType) {
		fmt.Fprintf(&b, "  - %s: %d\n", t, s.EventsByType[t])
	}

	fmt.Fprintf(&b, "\nGDPR COMPLIANCE METRICS\n%s\n", sep)
	fmt.Fprintf(&b, "Data Access Events: %d\n", s.AccessEvents)
	fmt.Fprintf(&b, "Data Deletion Events: %d\n", s.DeletionEvents)
	fmt.Fprintf(&b, "Consent Update Events: %d\n", s.ConsentEvents)
	fmt.Fprintf(&b, "Data Export Events: %d\n\n", s.ExportEvents)
	b.WriteString(rule + "\n")
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
