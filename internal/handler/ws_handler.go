package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"team-scheduler/internal/bridge"
	"team-scheduler/internal/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy handled by the CORS layer
	},
}

// WebSocket attaches the caller to the hub so the bridge can push view
// updates. The read loop only watches for disconnect; clients send nothing
// meaningful. Detaching releases the user's live-sync scope.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	me := middleware.UserID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade: %v", err)
		return
	}

	h.hub.Attach(me, conn)
	defer func() {
		h.hub.Detach(me, conn)
		conn.Close()
	}()

	// Go through the hub so the write is serialized with bridge pushes.
	h.hub.Push(me, bridge.Message{Type: "connected", Data: map[string]string{"status": "connected"}})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
