package websocket

import (
	"time"
)

// EventType represents the type of event pushed to subscribers.
type EventType string

const (
	// EventTypeDetection is emitted after each detection run.
	EventTypeDetection EventType = "detection"
	// EventTypeSystemStatus carries periodic system status updates.
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection reports clients joining or leaving the feed.
	EventTypeConnection EventType = "connection"
)

// Event is the wire envelope sent to clients.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// DetectionEvent summarizes a detection run. It carries counts and type
// names only; detected values never reach the event feed.
type DetectionEvent struct {
	DocumentID   string         `json:"document_id,omitempty"`
	Region       string         `json:"region"`
	Level        string         `json:"level"`
	PIIDetected  bool           `json:"pii_detected"`
	PIICount     int            `json:"pii_count"`
	TypeCounts   map[string]int `json:"type_counts,omitempty"`
	ProcessingMS float64        `json:"processing_ms"`
}

// SystemStatusEvent carries service health information.
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalRequests    int64  `json:"total_requests"`
	TotalDetections  int64  `json:"total_detections"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent reports feed membership changes.
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected" or "disconnected"
	ClientID string `json:"client_id"`
}

// ClientMessage is a message received from a client.
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SubscriptionRequest selects which event types a client receives.
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
}
