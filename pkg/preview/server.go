package preview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	// DefaultPortAttempts is how many sequential ports Start tries before
	// giving up. Sequential rather than OS-assigned so the user can predict
	// the URL well enough to type it.
	DefaultPortAttempts = 10

	// shutdownTimeout bounds the graceful drain during Stop. Reload
	// sessions are woken by the signal first, so in practice the drain is
	// near-instant; the force-close after the deadline is a backstop.
	shutdownTimeout = 2 * time.Second
)

// Options configures a Server.
type Options struct {
	// ProjectRoot is the directory whose files are served alongside the
	// embedded assets. Fixed for the lifetime of the server; previewing a
	// different project means constructing a new server.
	ProjectRoot string

	// Port is the requested TCP port. Ports Port..Port+PortAttempts-1 are
	// tried in order. Zero asks the OS for an ephemeral port (no fallback
	// sequence applies).
	Port int

	// PortAttempts overrides DefaultPortAttempts when positive.
	PortAttempts int

	// Assets is the fixed path→blob table served before any project file.
	// How the blobs were produced is the caller's concern.
	Assets map[string]Asset

	// Logger receives lifecycle events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Server serves a project preview over HTTP: embedded runtime assets,
// project files, and a live-reload broadcast channel.
//
// A Server is either Stopped or Running. Start and Stop are idempotent and
// safe for concurrent use; NotifyReload may be called from any goroutine at
// any time, including while stopped.
type Server struct {
	resolver      *Resolver
	requestedPort int
	portAttempts  int
	logger        *slog.Logger
	metrics       *metrics

	mu         sync.Mutex
	running    bool
	boundPort  int
	httpServer *http.Server
	signal     *Signal

	sessions atomic.Int64
}

// New creates a Server in the Stopped state. It validates and canonicalizes
// the project root but binds nothing.
func New(opts Options) (*Server, error) {
	resolver, err := NewResolver(opts.ProjectRoot, opts.Assets)
	if err != nil {
		return nil, fmt.Errorf("preview: invalid project root %q: %w", opts.ProjectRoot, err)
	}

	attempts := opts.PortAttempts
	if attempts <= 0 {
		attempts = DefaultPortAttempts
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		resolver:      resolver,
		requestedPort: opts.Port,
		portAttempts:  attempts,
		logger:        logger,
		metrics:       newMetrics(),
	}, nil
}

// Start binds a port and begins serving in the background. If the requested
// port is busy, the next ports in sequence are tried; the first one that
// binds wins. The bound port is returned and may differ from the requested
// one — it is what the caller should open in a browser.
//
// Calling Start on a running server returns the current bound port without
// rebinding.
func (s *Server) Start() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.boundPort, nil
	}

	ln, err := s.bind()
	if err != nil {
		return 0, err
	}

	s.signal = NewSignal()
	s.boundPort = ln.Addr().(*net.TCPAddr).Port
	s.httpServer = &http.Server{Handler: s.router()}
	s.running = true

	go func(srv *http.Server, ln net.Listener) {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("preview server terminated", "error", err)
		}
	}(s.httpServer, ln)

	s.logger.Info("preview server started",
		"port", s.boundPort, "root", s.resolver.Root())
	return s.boundPort, nil
}

// bind tries the configured port sequence and returns the first listener
// that succeeds. Called with s.mu held.
func (s *Server) bind() (net.Listener, error) {
	// Port zero is a single ephemeral bind; walking a sequence from it
	// would be meaningless.
	attempts := s.portAttempts
	if s.requestedPort == 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		port := s.requestedPort
		if port != 0 {
			port += i
		}
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			if i > 0 {
				s.logger.Info("requested port busy, using fallback",
					"requested", s.requestedPort, "bound", port)
			}
			return ln, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("preview: no free port in %d-%d: %w",
		s.requestedPort, s.requestedPort+attempts-1, lastErr)
}

// router builds the HTTP surface: the reload channels, the metrics endpoint,
// and everything else through the asset resolver.
func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/sse-reload", s.handleSSE)
	r.Get("/ws-reload", s.handleWebSocket)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	r.NotFound(s.handleAsset)
	return r
}

// Stop shuts the server down: the reload signal is closed so every session
// wakes and exits, the listener is closed so the accept loop unblocks
// without needing another connection, and remaining connections are drained
// briefly before being force-closed. Stopping a stopped server is a no-op.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	srv := s.httpServer
	sig := s.signal
	s.running = false
	s.httpServer = nil
	s.boundPort = 0
	s.mu.Unlock()

	sig.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.Close()
	}

	s.logger.Info("preview server stopped")
}

// NotifyReload tells every connected reload session that the project changed.
// It never blocks and is safe with zero subscribers or a stopped server.
// Rapid successive calls coalesce: a session that was busy observes only the
// latest generation and emits a single event.
func (s *Server) NotifyReload() {
	s.mu.Lock()
	sig := s.signal
	s.mu.Unlock()

	if sig == nil {
		return
	}
	sig.Notify()
	s.metrics.reloadsTotal.Inc()
}

// IsRunning reports whether the server currently owns a listener.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Port returns the bound port. Meaningful only while running; zero otherwise.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundPort
}

// URL returns the root URL of the running server, or "" when stopped.
func (s *Server) URL() string {
	port := s.Port()
	if port == 0 {
		return ""
	}
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

// SessionCount returns the number of live reload subscribers across both
// channels.
func (s *Server) SessionCount() int {
	return int(s.sessions.Load())
}

// currentSignal returns the signal a new session should subscribe to, or nil
// when the server is stopped.
func (s *Server) currentSignal() *Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	return s.signal
}

// handleSSE streams one "reload" event per generation change until the
// client disconnects or the server stops. Each subscriber runs on its own
// handler goroutine, so a slow tab never delays anyone else.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sig := s.currentSignal()
	if sig == nil {
		http.Error(w, "server stopping", http.StatusServiceUnavailable)
		return
	}

	// Subscribe before the headers go out: once the client has seen the
	// response start, a notification can no longer slip past it.
	last := sig.Generation()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.trackSession(1)
	defer s.trackSession(-1)
	for {
		gen, ok := sig.Wait(r.Context(), last)
		if !ok {
			// Shutdown or client gone. Closing the stream is the
			// event: the client sees EOF.
			return
		}
		last = gen
		if _, err := io.WriteString(w, "data: reload\n\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}

// handleAsset serves everything that is not a reload channel: embedded
// assets first, then project files, then 404. Responses are uncacheable and
// CORS-open because the preview target is an engine iframe that must always
// see fresh output.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Cache-Control", "no-cache")

	asset, outcome := s.resolver.Resolve(r.URL.Path)
	s.metrics.requestsTotal.WithLabelValues(outcome.String()).Inc()

	if outcome == OutcomeNotFound {
		h.Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		if r.Method != http.MethodHead {
			io.WriteString(w, "Not Found")
		}
		return
	}

	h.Set("Content-Type", asset.ContentType)
	h.Set("Content-Length", fmt.Sprintf("%d", len(asset.Data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(asset.Data)
	}
}

func (s *Server) trackSession(delta int64) {
	s.sessions.Add(delta)
	s.metrics.reloadSessions.Add(float64(delta))
}
