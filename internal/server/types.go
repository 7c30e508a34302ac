package server

import (
	"github.com/Charlescifix/gdpr-safe-rag/internal/privacy"
)

// DetectRequest is the body of POST /v1/detect. When StatsOnly is set
// and the result cache holds an entry for the text, the response is
// served from the cache without rescanning.
type DetectRequest struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id,omitempty"`
	StatsOnly  bool   `json:"stats_only,omitempty"`
}

// DetectResponse reports detection spans and aggregate statistics.
// Detection values are never serialized, only their positions and types.
type DetectResponse struct {
	PIIDetected bool                `json:"pii_detected"`
	Detections  []privacy.Detection `json:"detections,omitempty"`
	Stats       privacy.Stats       `json:"stats"`
	CacheHit    bool                `json:"cache_hit,omitempty"`
}

// RedactRequest is the body of POST /v1/redact.
type RedactRequest struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

// RedactResponse returns the redacted text together with the restore
// mapping. The mapping contains the original values; callers are
// responsible for storing it securely.
type RedactResponse struct {
	RedactedText string              `json:"redacted_text"`
	Mapping      map[string]string   `json:"mapping"`
	Detections   []privacy.Detection `json:"detections"`
	Stats        privacy.Stats       `json:"stats"`
}

// RestoreRequest is the body of POST /v1/restore.
type RestoreRequest struct {
	RedactedText string            `json:"redacted_text"`
	Mapping      map[string]string `json:"mapping"`
}

// RestoreResponse returns the reconstructed text.
type RestoreResponse struct {
	Text string `json:"text"`
}

// IngestRequest is the body of POST /v1/ingest.
type IngestRequest struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
	UserID     string `json:"user_id,omitempty"`
}

// IngestResponse returns the redacted document and its detection
// metadata. The original text is never echoed back.
type IngestResponse struct {
	DocumentID   string                 `json:"document_id"`
	RedactedText string                 `json:"redacted_text"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
