package server

import (
	"sync"
	"time"

	"github.com/Charlescifix/gdpr-safe-rag/internal/config"
)

// RateLimiter applies per-client token bucket rate limiting.
type RateLimiter struct {
	config  config.ServerConfig
	buckets map[string]*tokenBucket
	mu      sync.RWMutex
}

type tokenBucket struct {
	tokens     float64
	capacity   float64
	refillRate float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a rate limiter from the server configuration.
func NewRateLimiter(cfg config.ServerConfig) *RateLimiter {
	return &RateLimiter{
		config:  cfg,
		buckets: make(map[string]*tokenBucket),
	}
}

// Allow reports whether a request from the client IP may proceed.
func (r *RateLimiter) Allow(clientIP string) bool {
	if !r.config.RateLimit.Enabled {
		return true
	}
	return r.getBucket(clientIP).consume(1)
}

func (r *RateLimiter) getBucket(clientIP string) *tokenBucket {
	r.mu.RLock()
	bucket, exists := r.buckets[clientIP]
	r.mu.RUnlock()
	if exists {
		return bucket
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if bucket, exists := r.buckets[clientIP]; exists {
		return bucket
	}

	bucket = &tokenBucket{
		tokens:     r.config.RateLimit.Burst,
		capacity:   r.config.RateLimit.Burst,
		refillRate: r.config.RateLimit.RequestsPerSecond,
		lastRefill: time.Now(),
	}
	r.buckets[clientIP] = bucket
	return bucket
}

func (b *tokenBucket) consume(tokens float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	b.lastRefill = now

	if b.tokens >= tokens {
		b.tokens -= tokens
		return true
	}
	return false
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
