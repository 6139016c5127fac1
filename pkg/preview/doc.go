// Package preview implements the local game-preview server embedded in the
// MicroES editor tooling.
//
// The server does three things:
//   - Serves a fixed table of embedded runtime assets (the preview document,
//     the engine loader and wasm binary, the SDK scripts) straight from memory.
//   - Serves arbitrary files from a user-chosen project directory, with a
//     containment check so a request can never read outside that directory.
//   - Broadcasts "reload now" to any number of connected browser tabs, over
//     Server-Sent Events or a WebSocket, whenever NotifyReload is called.
//
// # Lifecycle
//
//	srv, err := preview.New(preview.Options{
//	    ProjectRoot: "/path/to/project",
//	    Port:        7878,
//	    Assets:      assets.Table(),
//	})
//	if err != nil {
//	    return err
//	}
//
//	port, err := srv.Start() // bound port may differ from the requested one
//	...
//	srv.NotifyReload()       // after every project change
//	...
//	srv.Stop()               // unblocks the accept loop and every session
//
// # Reload Protocol
//
// Reload delivery is state-based, not queued. The shared Signal carries a
// generation counter; a session that sleeps through three notifications
// wakes once, observes the final generation, and emits a single event.
// Subscribers connect to GET /sse-reload (one "data: reload" frame per
// change) or GET /ws-reload (one {"type":"reload"} JSON message per change).
// Stopping the server ends every stream; clients treat EOF as "reconnect
// and reload".
package preview
