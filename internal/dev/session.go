package dev

import (
	"context"
	"log/slog"
	"time"

	"github.com/esengine/microes/internal/assets"
	"github.com/esengine/microes/internal/config"
	"github.com/esengine/microes/pkg/preview"
)

// SessionOptions configures a dev session.
type SessionOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives session events. Defaults to slog.Default().
	Logger *slog.Logger

	// OnBuildStart is called when a toolchain run starts.
	OnBuildStart func()

	// OnBuildComplete is called when a toolchain run completes.
	OnBuildComplete func(result RunResult)

	// OnToolchainLine receives toolchain output lines. Defaults to the
	// session logger.
	OnToolchainLine LineFunc

	// OnReload is called after browsers are told to reload, with the
	// number of connected reload sessions.
	OnReload func(sessions int)
}

// Session ties the preview server, the file watcher and the toolchain
// runner together for one project. It is what the CLI runs; an embedding
// shell that has its own watcher drives preview.Server directly instead.
type Session struct {
	cfg      *config.Config
	options  SessionOptions
	logger   *slog.Logger
	server   *preview.Server
	watcher  *Watcher
	runner   *Runner
	changeCh chan Change
}

// NewSession creates a session for the given project. Nothing is started.
func NewSession(options SessionOptions) (*Session, error) {
	cfg := options.Config

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server, err := preview.New(preview.Options{
		ProjectRoot:  cfg.Dir(),
		Port:         cfg.Preview.Port,
		PortAttempts: cfg.Preview.PortAttempts,
		Assets:       assets.Table(),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    cfg.WatchPaths(),
		Ignore:   cfg.Watch.Ignore,
		Debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
	})

	return &Session{
		cfg:     cfg,
		options: options,
		logger:  logger,
		server:  server,
		watcher: watcher,
		runner:  NewRunner(),
	}, nil
}

// Server exposes the underlying preview server.
func (s *Session) Server() *preview.Server {
	return s.server
}

// Run starts the preview server and the watcher and blocks until ctx is
// cancelled. The server is stopped before Run returns.
func (s *Session) Run(ctx context.Context) error {
	port, err := s.server.Start()
	if err != nil {
		return err
	}
	s.logger.Info("preview available", "url", s.server.URL(), "port", port)

	// Small buffer: bursts beyond it are dropped here and recovered by
	// the drain in processChanges — reload only needs the latest state.
	s.changeCh = make(chan Change, 64)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
		}
	})

	go s.watcher.Start(ctx)

	s.processChanges(ctx)

	s.watcher.Stop()
	s.server.Stop()
	return nil
}

// processChanges serializes change handling and coalesces bursts: a save
// that touches twenty files produces one rebuild and one reload.
func (s *Session) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			changes := []Change{change}
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next)
				default:
					draining = false
				}
			}
			s.handleChanges(ctx, changes)
		}
	}
}

// handleChanges rebuilds if any script changed and the project has a build
// step, then notifies browsers. A failed build notifies nobody: the last
// good output keeps running until the toolchain succeeds again.
func (s *Session) handleChanges(ctx context.Context, changes []Change) {
	hasScript := false
	for _, change := range changes {
		s.logger.Debug("changed", "path", change.Path)
		if change.Type == ChangeScript {
			hasScript = true
		}
	}

	if hasScript && s.cfg.HasBuildStep() {
		if !s.rebuild(ctx) {
			return
		}
	}

	s.server.NotifyReload()
	if s.options.OnReload != nil {
		s.options.OnReload(s.server.SessionCount())
	}
}

// rebuild runs the project toolchain and reports whether it succeeded.
func (s *Session) rebuild(ctx context.Context) bool {
	if s.options.OnBuildStart != nil {
		s.options.OnBuildStart()
	}

	onLine := s.options.OnToolchainLine
	if onLine == nil {
		onLine = func(stream, line string) {
			s.logger.Info("toolchain", "stream", stream, "line", line)
		}
	}

	result, err := s.runner.Run(ctx, s.cfg.Dir(), s.cfg.Build.Command, s.cfg.Build.Args, onLine)
	if err != nil {
		s.logger.Error("toolchain failed to run", "error", err)
		return false
	}

	if s.options.OnBuildComplete != nil {
		s.options.OnBuildComplete(result)
	}

	if !result.Success {
		s.logger.Error("build failed", "code", result.Code)
		return false
	}

	s.logger.Info("built", "duration", result.Duration.Round(time.Millisecond))
	return true
}
