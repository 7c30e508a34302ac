package websocket

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/Charlescifix/gdpr-safe-rag/internal/config"
)

func TestClientWants(t *testing.T) {
	t.Run("NoSubscriptionReceivesAll", func(t *testing.T) {
		c := &Client{}
		for _, et := range []EventType{EventTypeDetection, EventTypeSystemStatus, EventTypeConnection} {
			if !c.wants(et) {
				t.Errorf("client without subscription rejected %s", et)
			}
		}
	})

	t.Run("FilteredSubscription", func(t *testing.T) {
		c := &Client{subscription: &SubscriptionRequest{Events: []EventType{EventTypeDetection}}}
		if !c.wants(EventTypeDetection) {
			t.Error("subscribed event rejected")
		}
		if c.wants(EventTypeSystemStatus) {
			t.Error("unsubscribed event accepted")
		}
	})
}

func TestCheckOrigin(t *testing.T) {
	newRequest := func(origin string) *http.Request {
		r, _ := http.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	t.Run("NoRestrictions", func(t *testing.T) {
		h := NewHub(config.WebSocketConfig{}, zap.NewNop())
		if !h.checkOrigin(newRequest("https://anywhere.example")) {
			t.Error("open hub rejected origin")
		}
	})

	t.Run("AllowList", func(t *testing.T) {
		h := NewHub(config.WebSocketConfig{AllowedOrigins: []string{"https://ok.example"}}, zap.NewNop())
		if !h.checkOrigin(newRequest("https://ok.example")) {
			t.Error("allowed origin rejected")
		}
		if h.checkOrigin(newRequest("https://evil.example")) {
			t.Error("disallowed origin accepted")
		}
	})

	t.Run("Wildcard", func(t *testing.T) {
		h := NewHub(config.WebSocketConfig{AllowedOrigins: []string{"*"}}, zap.NewNop())
		if !h.checkOrigin(newRequest("https://anywhere.example")) {
			t.Error("wildcard rejected origin")
		}
	})
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	h := NewHub(config.WebSocketConfig{}, zap.NewNop())

	// Fill the broadcast channel; further events must not block.
	for i := 0; i < 300; i++ {
		h.BroadcastDetection(DetectionEvent{PIICount: i})
	}
}
