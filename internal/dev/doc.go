// Package dev wires the preview server to a project on disk.
//
// This package implements:
//   - File watching for script, scene, and asset changes
//   - Running the project's build toolchain with line-streamed output
//   - The dev session loop: change → (rebuild) → reload broadcast
//
// # Architecture
//
//   - Watcher: polls project files for modification-time changes
//   - Runner: executes the configured toolchain command, streaming output
//   - Session: owns a preview.Server and turns watcher changes into
//     reload notifications, rebuilding first when a script changed
//
// # Usage
//
//	cfg, _ := config.Load(projectDir)
//	session, err := dev.NewSession(dev.SessionOptions{Config: cfg})
//	if err != nil {
//	    return err
//	}
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	session.Run(ctx) // blocks; cancel to shut down
package dev
