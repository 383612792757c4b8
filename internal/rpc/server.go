package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// maxRequestBody bounds the inbound envelope size.
const maxRequestBody = 1 * 1024 * 1024 // 1 MB

// Server exposes the JSON-RPC endpoint at the root path plus the status,
// metrics, and health routes.
type Server struct {
	dispatcher *Dispatcher
	metrics    *Metrics
	logger     *slog.Logger
	addr       string
	httpSrv    *http.Server
	boundAddr  string
	startTime  time.Time
}

// NewServer creates the HTTP server around a dispatcher.
func NewServer(addr string, dispatcher *Dispatcher, metrics *Metrics, logger *slog.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		addr:       addr,
		startTime:  time.Now(),
	}
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRPC)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/v1/status", statusHandler(s.dispatcher, s.startTime, s.metrics))
	mux.HandleFunc("/metrics", metricsHandler(s.dispatcher, s.startTime, s.metrics))
	return permissiveCORS(mux)
}

// Start begins serving. Blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	s.boundAddr = listener.Addr().String()
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("gateway started", "addr", s.boundAddr)

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway serve: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) {
	if s.httpSrv == nil {
		return
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Warn("gateway shutdown", "error", err)
	}
}

// Addr returns the bound listen address once Start has run.
func (s *Server) Addr() string { return s.boundAddr }

// handleRPC serves the JSON-RPC endpoint. A body that is not a JSON object
// at all is a protocol-shape fault and surfaces as HTTP 400; once an
// envelope decodes, every outcome is a JSON-RPC response with HTTP 200.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "malformed JSON-RPC envelope", http.StatusBadRequest)
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok\n")
}

// permissiveCORS allows any origin, mirroring the public single-endpoint
// deployment model. Preflight requests short-circuit with 204.
func permissiveCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
