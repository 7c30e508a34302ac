package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Charlescifix/gdpr-safe-rag/internal/audit"
	"github.com/Charlescifix/gdpr-safe-rag/internal/cache"
	"github.com/Charlescifix/gdpr-safe-rag/internal/compliance"
	"github.com/Charlescifix/gdpr-safe-rag/internal/config"
	"github.com/Charlescifix/gdpr-safe-rag/internal/logger"
	"github.com/Charlescifix/gdpr-safe-rag/internal/privacy"
	"github.com/Charlescifix/gdpr-safe-rag/internal/websocket"
)

// Version is the service version reported by /info.
const Version = "0.1.0"

// Server is the HTTP API for PII detection, redaction and compliance
// reporting.
type Server struct {
	config      *config.Config
	logger      *logger.Logger
	detector    *privacy.Detector
	auditLog    *audit.Logger
	checker     *compliance.Checker
	resultCache *cache.ResultCache
	wsHub       *websocket.Hub
	rateLimiter *RateLimiter
	router      *mux.Router
	server      *http.Server
	startTime   time.Time
}

// New wires the API server from configuration.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	detector, err := privacy.New(cfg.Privacy, log.WithComponent("privacy"))
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}

	auditLog, err := audit.New(cfg.Audit, log.WithComponent("audit").Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit logger: %w", err)
	}

	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		resultCache, err = cache.New(cfg.Cache, log.WithComponent("cache").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
	}

	checker := compliance.NewChecker(cfg.Compliance.RetentionDays, log.WithComponent("compliance").Logger)
	wsHub := websocket.NewHub(cfg.WebSocket, log.WithComponent("websocket").Logger)

	s := &Server{
		config:      cfg,
		logger:      log.WithComponent("server"),
		detector:    detector,
		auditLog:    auditLog,
		checker:     checker,
		resultCache: resultCache,
		wsHub:       wsHub,
		rateLimiter: NewRateLimiter(cfg.Server),
		router:      mux.NewRouter(),
		startTime:   time.Now(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	if s.config.WebSocket.Enabled {
		path := s.config.WebSocket.Path
		if path == "" {
			path = "/ws"
		}
		s.router.HandleFunc(path, s.wsHub.HandleWebSocket).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/detect", s.handleDetect).Methods("POST")
	api.HandleFunc("/redact", s.handleRedact).Methods("POST")
	api.HandleFunc("/restore", s.handleRestore).Methods("POST")
	api.HandleFunc("/ingest", s.handleIngest).Methods("POST")
	api.HandleFunc("/audit/events", s.handleAuditEvents).Methods("GET")
	api.HandleFunc("/audit/export", s.handleAuditExport).Methods("GET")
	api.HandleFunc("/compliance/report", s.handleComplianceReport).Methods("GET")
}

// Start initializes the audit backend, starts the event feed hub and
// serves HTTP until shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.auditLog.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize audit backend: %w", err)
	}

	go s.wsHub.Run()

	s.logger.Info("Starting API server",
		zap.Int("port", s.config.Server.Port),
		zap.String("region", s.config.Privacy.Region),
		zap.String("level", s.config.Privacy.Level),
		zap.String("audit_backend", s.config.Audit.Backend),
		zap.Bool("cache_enabled", s.config.Cache.Enabled))

	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server and closes backends.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	if s.resultCache != nil {
		if err := s.resultCache.Close(); err != nil {
			s.logger.Warn("Failed to close result cache", zap.Error(err))
		}
	}
	return s.auditLog.Close()
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
