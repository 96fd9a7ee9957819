// Package httpapi exposes the assistant over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/config"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	"github.com/harunnryd/planpal/internal/logger"
)

// Agent answers one message against one calendar.
type Agent interface {
	Run(ctx context.Context, message string, gateway calendar.Gateway) string
}

// GatewayFactory binds a calendar gateway to the caller's access token.
type GatewayFactory func(ctx context.Context, accessToken string) (calendar.Gateway, error)

type agentRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type agentResponse struct {
	Response string `json:"response"`
	TraceID  string `json:"trace_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	cfg         *config.ServerConfig
	agent       Agent
	gateways    GatewayFactory
	metrics     http.Handler
	server      *http.Server
	shutdownTTL time.Duration
	started     bool
	mu          sync.Mutex
}

// NewServer builds the server. metrics may be nil, in which case /metrics
// is not routed.
func NewServer(cfg *config.ServerConfig, agent Agent, gateways GatewayFactory, metrics http.Handler) (*Server, error) {
	if agent == nil {
		return nil, fmt.Errorf("agent is required")
	}
	if gateways == nil {
		return nil, fmt.Errorf("gateway factory is required")
	}

	readTimeout, err := config.DurationOrDefault(cfg.ReadTimeout, config.DefaultServerReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server read timeout: %w", err)
	}
	writeTimeout, err := config.DurationOrDefault(cfg.WriteTimeout, config.DefaultServerWriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server write timeout: %w", err)
	}
	idleTimeout, err := config.DurationOrDefault(cfg.IdleTimeout, config.DefaultServerIdleTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server idle timeout: %w", err)
	}
	shutdownTimeout, err := config.DurationOrDefault(cfg.ShutdownTimeout, config.DefaultServerShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse server shutdown timeout: %w", err)
	}

	s := &Server{
		cfg:         cfg,
		agent:       agent,
		gateways:    gateways,
		metrics:     metrics,
		shutdownTTL: shutdownTimeout,
	}
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s, nil
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHealth)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/agent", s.handleAgent)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// Start listens in the background. Use Stop to shut down.
func (s *Server) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	go func() {
		slog.Info("HTTP server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
	s.started = true
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	slog.Info("Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTTL)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.started = false
	slog.Info("HTTP server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/health" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid authorization header"})
		return
	}

	var req agentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	ctx, traceID := logger.EnsureTraceID(r.Context())
	if req.SessionID != "" {
		ctx = logger.WithSessionID(ctx, req.SessionID)
	}

	gateway, err := s.gateways(ctx, token)
	if err != nil {
		slog.Warn("Calendar gateway unavailable", "error", err, "trace_id", traceID)
		if planpalErrors.IsCategory(err, planpalErrors.ErrUnauthenticated) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: planpalErrors.Message(err)})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "calendar unavailable"})
		return
	}

	reply := s.agent.Run(ctx, req.Message, gateway)
	writeJSON(w, http.StatusOK, agentResponse{Response: reply, TraceID: traceID})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
