package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"fmpmcp/internal/config"
	"fmpmcp/internal/factory"
	"fmpmcp/internal/session"
	"fmpmcp/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout is the default timeout for writing responses.
	DefaultWriteTimeout = 120 * time.Second
	// DefaultIdleTimeout is the default idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second
	// DefaultShutdownTimeout bounds how long Stop waits for in-flight requests.
	DefaultShutdownTimeout = 10 * time.Second
)

// Endpoint paths.
const (
	MCPPath     = "/mcp"
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Builder constructs a client server on a cache miss.
type Builder interface {
	Create(ctx context.Context, clientID string, cfg config.ClientConfig) (*factory.Instance, error)
}

// Cache is the per-client server cache.
type Cache = session.ResourceCache[*factory.Instance]

// Options configures a Server.
type Options struct {
	Addr    string
	Cache   *Cache
	Builder Builder

	// MetricsHandler is mounted on /metrics when non-nil.
	MetricsHandler http.Handler

	DefaultCredential *config.DefaultCredential
	EnforcedMode      config.ModeConfig
	Version           string
}

// Server is the HTTP front end.
type Server struct {
	opts    Options
	started time.Time

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	stopped    bool
}

// New creates a Server. It does not listen until Start.
func New(opts Options) (*Server, error) {
	if opts.Cache == nil {
		return nil, errors.New("server requires a cache")
	}
	if opts.Builder == nil {
		return nil, errors.New("server requires a builder")
	}
	return &Server{opts: opts, started: time.Now()}, nil
}

// Handler returns the routing mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(MCPPath, s.handleMCP)
	mux.HandleFunc(HealthPath, s.handleHealth)
	if s.opts.MetricsHandler != nil {
		mux.Handle(MetricsPath, s.opts.MetricsHandler)
	}
	return mux
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	s.httpServer = srv
	s.listener = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server", err, "HTTP server error")
		}
	}()

	logging.Info("Server", "Listening on %s (mcp=%s health=%s)", ln.Addr(), MCPPath, HealthPath)
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Stop shuts the server down: cache sweep first, then the listener, then
// the cached client servers. Errors are joined and returned after every step
// has been attempted.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	httpServer := s.httpServer
	s.mu.Unlock()

	var errs []error

	logging.Info("Server", "Stopping cache sweep")
	s.opts.Cache.Stop()

	if httpServer != nil {
		logging.Info("Server", "Closing HTTP listener")
		shutdownCtx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down HTTP server")
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		cancel()
	}

	logging.Info("Server", "Releasing cached client servers")
	if err := s.opts.Cache.Close(); err != nil {
		logging.Error("Server", err, "Error releasing cache")
		errs = append(errs, fmt.Errorf("cache close: %w", err))
	}

	return errors.Join(errs...)
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	cfg, err := config.ClientConfigFromQuery(r.URL.Query())
	if err != nil {
		logging.Debug("Server", "Rejecting request with bad client config: %v", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if cfg.AccessCredential == "" {
		s.serveAnonymous(w, r, cfg)
		return
	}

	clientID := session.DeriveClientID(cfg.AccessCredential)
	inst, ok := s.getOrCreate(w, r, clientID, cfg)
	if !ok {
		return
	}
	inst.ServeHTTP(w, r)
}

// serveAnonymous routes a request that carries no credential. initialize
// creates a fresh identity, which the client's server hands back as the
// Mcp-Session-Id. Later requests of that connection present the header and
// reach the same server.
func (s *Server) serveAnonymous(w http.ResponseWriter, r *http.Request, cfg config.ClientConfig) {
	if sessionID := r.Header.Get(mcpserver.HeaderKeySessionID); sessionID != "" {
		var inst *factory.Instance
		found := false
		if session.IsAnonymous(sessionID) {
			inst, found = s.opts.Cache.Lookup(r.Context(), sessionID)
		}
		if !found {
			logging.Debug("Server", "Unknown session %s", logging.TruncateIdentifier(sessionID))
			writeJSONError(w, http.StatusNotFound, "session not found; send initialize to start a new session")
			return
		}
		inst.ServeHTTP(w, r)
		if r.Method == http.MethodDelete {
			s.opts.Cache.Remove(sessionID)
		}
		return
	}

	if !isInitialize(r) {
		writeJSONError(w, http.StatusBadRequest, "missing "+mcpserver.HeaderKeySessionID+" header; send initialize first")
		return
	}
	clientID := session.DeriveClientID("")
	inst, ok := s.getOrCreate(w, r, clientID, cfg)
	if !ok {
		return
	}
	inst.ServeHTTP(w, r)
}

func (s *Server) getOrCreate(w http.ResponseWriter, r *http.Request, clientID string, cfg config.ClientConfig) (*factory.Instance, bool) {
	inst, err := s.opts.Cache.GetOrCreate(r.Context(), clientID, func(ctx context.Context) (*factory.Instance, error) {
		return s.opts.Builder.Create(ctx, clientID, cfg)
	})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	s.checkMode(clientID, cfg, inst)
	return inst, true
}

// checkMode logs when a client asks for a different mode than its cached
// server runs in. The cached server keeps serving until it expires.
func (s *Server) checkMode(clientID string, cfg config.ClientConfig, inst *factory.Instance) {
	if want := factory.ModeFor(cfg, s.opts.EnforcedMode); want != inst.Mode {
		logging.Info("Server", "Client %s requested %s but its cached server runs %s; the change applies once the entry expires",
			logging.TruncateIdentifier(clientID), want, inst.Mode)
	}
}

// isInitialize reports whether r is a POST carrying an initialize request.
// The body is restored for the protocol handler.
func isInitialize(r *http.Request) bool {
	if r.Method != http.MethodPost || r.Body == nil {
		return false
	}
	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return false
	}
	var msg struct {
		Method mcp.MCPMethod `json:"method"`
	}
	return json.Unmarshal(body, &msg) == nil && msg.Method == mcp.MethodInitialize
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Server", "Failed to write response: %v", err)
	}
}
