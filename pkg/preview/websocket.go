package preview

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadMessage is the frame delivered on the WebSocket reload channel.
// The preview document uses the SSE channel; the editor shell's embedded
// webview prefers a socket it can also use to detect server death.
type ReloadMessage struct {
	Type string `json:"type"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local dev server, any origin may subscribe
	},
}

// handleWebSocket upgrades the connection and mirrors the SSE semantics:
// one reload message per observed generation, coalesced, until disconnect
// or shutdown.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sig := s.currentSignal()
	if sig == nil {
		http.Error(w, "server stopping", http.StatusServiceUnavailable)
		return
	}

	// Subscribe before the handshake completes so a notification racing
	// the connect is still delivered.
	last := sig.Generation()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.trackSession(1)
	defer s.trackSession(-1)

	// The read loop exists only to notice the peer going away; clients
	// send nothing meaningful. Its cancel wakes the wait below.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		gen, ok := sig.Wait(ctx, last)
		if !ok {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				closeDeadline())
			return
		}
		last = gen
		if err := conn.WriteJSON(ReloadMessage{Type: "reload"}); err != nil {
			return
		}
	}
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}
