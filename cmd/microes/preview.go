package main

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/esengine/microes/internal/config"
	"github.com/esengine/microes/internal/dev"
)

func previewCmd() *cobra.Command {
	var (
		port        int
		openBrowser bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "preview [project-dir]",
		Short: "Serve a project preview with live reload",
		Long: `Serve a project to the MicroES runtime with live reload.

The preview server serves the embedded engine and SDK alongside the
project's files, watches the project for changes, and refreshes
connected browsers automatically. If the project configures a build
command, script changes rebuild before the refresh.

Examples:
  microes preview
  microes preview ./my-game
  microes preview --port=9000 --open`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runPreview(dir, port, openBrowser, verbose)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (default from microes.json)")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every file change")

	return cmd
}

func runPreview(dir string, port int, openBrowser, verbose bool) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		cfg.Preview.Port = port
	}
	if openBrowser {
		cfg.Preview.OpenBrowser = true
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	session, err := dev.NewSession(dev.SessionOptions{
		Config: cfg,
		Logger: logger,
		OnBuildStart: func() {
			info("Rebuilding...")
		},
		OnBuildComplete: func(result dev.RunResult) {
			if result.Success {
				success("Built in %s", result.Duration.Round(time.Millisecond))
			} else {
				errorMsg("Build failed (exit %d)", result.Code)
			}
		},
		OnToolchainLine: func(stream, line string) {
			info("%s", line)
		},
		OnReload: func(sessions int) {
			success("Reloaded %d browsers", sessions)
		},
	})
	if err != nil {
		return err
	}

	printBanner()
	info("Starting preview (Ctrl+C to stop)")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		info("Shutting down...")
		cancel()
	}()

	if cfg.Preview.OpenBrowser {
		go func() {
			// Give the listener a moment; Start has usually returned
			// by the time the browser resolves the URL anyway.
			time.Sleep(200 * time.Millisecond)
			if url := session.Server().URL(); url != "" {
				openURL(url)
			}
		}()
	}

	return session.Run(ctx)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("start"):
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	cmd.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
