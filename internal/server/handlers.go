package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Charlescifix/gdpr-safe-rag/internal/audit"
	"github.com/Charlescifix/gdpr-safe-rag/internal/cache"
	"github.com/Charlescifix/gdpr-safe-rag/internal/compliance"
	"github.com/Charlescifix/gdpr-safe-rag/internal/privacy"
	"github.com/Charlescifix/gdpr-safe-rag/internal/websocket"
)

const maxBodyBytes = 10 << 20 // 10 MiB

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":          "gdpr-safe-rag",
		"version":       Version,
		"uptime":        time.Since(s.startTime).String(),
		"region":        string(s.detector.Region()),
		"level":         string(s.detector.Level()),
		"strategy":      s.config.Privacy.Strategy,
		"pattern_count": len(s.detector.Patterns()),
		"audit_backend": s.config.Audit.Backend,
		"cache_enabled": s.config.Cache.Enabled,
		"feed":          s.wsHub.GetStats(),
	})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var key string
	if s.resultCache != nil {
		key = s.resultCache.Key(s.config.Privacy.Region, s.config.Privacy.Level, s.config.Privacy.Strategy, req.Text)
		if req.StatsOnly {
			if cached, _ := s.resultCache.Get(r.Context(), key); cached != nil {
				writeJSON(w, http.StatusOK, DetectResponse{
					PIIDetected: cached.PIIDetected,
					Stats:       cached.Stats,
					CacheHit:    true,
				})
				return
			}
		}
	}

	start := time.Now()
	result := s.detector.Redact(req.Text)
	s.publishDetection(req.DocumentID, &result, time.Since(start))

	if s.resultCache != nil {
		if err := s.resultCache.Put(r.Context(), key, &cache.CachedResult{
			PIIDetected: result.PIICount() > 0,
			Stats:       result.Stats,
			TypeCounts:  result.Stats.TypeCounts,
		}); err != nil {
			s.logger.Warn("Failed to cache detection result", zap.Error(err))
		}
	}

	resp := DetectResponse{
		PIIDetected: result.PIICount() > 0,
		Detections:  result.Detections,
		Stats:       result.Stats,
	}
	if req.StatsOnly {
		resp.Detections = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req RedactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()
	result := s.detector.Redact(req.Text)
	s.publishDetection(req.DocumentID, &result, time.Since(start))

	writeJSON(w, http.StatusOK, RedactResponse{
		RedactedText: result.RedactedText,
		Mapping:      result.Mapping,
		Detections:   result.Detections,
		Stats:        result.Stats,
	})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, RestoreResponse{
		Text: privacy.Restore(req.RedactedText, req.Mapping),
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "document_id is required")
		return
	}

	start := time.Now()
	redacted, metadata := s.detector.ProcessDocument(req.Text, req.DocumentID)

	piiDetected, _ := metadata["pii_detected"].(bool)
	piiCount, _ := metadata["pii_count"].(int)

	if _, err := s.auditLog.LogIngestion(r.Context(), req.DocumentID, req.UserID, piiDetected, piiCount); err != nil {
		s.logger.Error("Failed to record ingestion", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record ingestion")
		return
	}

	typeCounts, _ := metadata["pii_type_counts"].(map[string]int)

	if s.resultCache != nil {
		key := s.resultCache.Key(s.config.Privacy.Region, s.config.Privacy.Level, s.config.Privacy.Strategy, req.Text)
		if err := s.resultCache.Put(r.Context(), key, &cache.CachedResult{
			PIIDetected: piiDetected,
			Stats: privacy.Stats{
				OriginalLength: len(req.Text),
				PIICount:       piiCount,
				TypeCounts:     typeCounts,
			},
			TypeCounts: typeCounts,
		}); err != nil {
			s.logger.Warn("Failed to cache ingestion result", zap.Error(err))
		}
	}
	s.wsHub.BroadcastDetection(websocket.DetectionEvent{
		DocumentID:   req.DocumentID,
		Region:       s.config.Privacy.Region,
		Level:        s.config.Privacy.Level,
		PIIDetected:  piiDetected,
		PIICount:     piiCount,
		TypeCounts:   typeCounts,
		ProcessingMS: float64(time.Since(start).Microseconds()) / 1000,
	})

	writeJSON(w, http.StatusOK, IngestResponse{
		DocumentID:   req.DocumentID,
		RedactedText: redacted,
		Metadata:     metadata,
	})
}

// publishDetection pushes a PII-safe summary to the event feed.
func (s *Server) publishDetection(documentID string, result *privacy.RedactionResult, elapsed time.Duration) {
	s.wsHub.BroadcastDetection(websocket.DetectionEvent{
		DocumentID:   documentID,
		Region:       s.config.Privacy.Region,
		Level:        s.config.Privacy.Level,
		PIIDetected:  result.PIICount() > 0,
		PIICount:     result.PIICount(),
		TypeCounts:   result.Stats.TypeCounts,
		ProcessingMS: float64(elapsed.Microseconds()) / 1000,
	})
}

func (s *Server) handleAuditEvents(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseFilters(w, r)
	if !ok {
		return
	}

	events, err := s.auditLog.Query(r.Context(), filters)
	if err != nil {
		s.logger.Error("Failed to query audit events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to query audit events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseFilters(w, r)
	if !ok {
		return
	}
	if filters.Limit == 0 {
		filters.Limit = 10000
	}

	events, err := s.auditLog.Query(r.Context(), filters)
	if err != nil {
		s.logger.Error("Failed to query audit events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to query audit events")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	if _, err := s.auditLog.LogExport(r.Context(), r.URL.Query().Get("user_id"), format, nil); err != nil {
		s.logger.Warn("Failed to record export", zap.Error(err))
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="audit_events.csv"`)
		err = audit.ExportCSV(w, events)
	case "parquet":
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="audit_events.parquet"`)
		err = audit.ExportParquet(w, events)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		err = audit.ExportJSON(w, events, true)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export format: %q", format))
		return
	}
	if err != nil {
		s.logger.Error("Audit export failed", zap.Error(err), zap.String("format", format))
	}
}

func parseFilters(w http.ResponseWriter, r *http.Request) (audit.Filters, bool) {
	q := r.URL.Query()
	filters := audit.Filters{
		EventType:  q.Get("event_type"),
		UserID:     q.Get("user_id"),
		ResourceID: q.Get("resource_id"),
	}

	for name, dst := range map[string]*int{"limit": &filters.Limit, "offset": &filters.Offset} {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, raw))
				return audit.Filters{}, false
			}
			*dst = v
		}
	}

	for name, dst := range map[string]*time.Time{"start_date": &filters.StartDate, "end_date": &filters.EndDate} {
		if raw := q.Get(name); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, raw))
				return audit.Filters{}, false
			}
			*dst = t
		}
	}

	return filters, true
}

func (s *Server) handleComplianceReport(w http.ResponseWriter, r *http.Request) {
	report := s.checker.RunAll(r.Context(), &compliance.Context{
		Audit:           s.auditLog,
		CheckPeriodDays: s.config.Compliance.CheckPeriodDays,
	})

	format := r.URL.Query().Get("format")
	switch format {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, report.ToText(true))
	case "json":
		out, err := report.ToJSON()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to render report")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, out)
	case "yaml":
		out, err := report.ToYAML()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to render report")
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		fmt.Fprint(w, out)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown report format: %q", format))
	}
}
