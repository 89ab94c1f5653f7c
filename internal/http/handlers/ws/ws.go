package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	wsClient "github.com/fabriciofarewell/wall-service/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The wall is public and anonymous; any origin may listen.
		return true
	},
}

// Handler upgrades a page session to a WebSocket receiving wall events.
func Handler(hub *wsClient.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
			return
		}

		client := wsClient.NewClient(conn, hub)
		hub.RegisterClient(client)
		client.Start()

		slog.Info("WebSocket connection established", slog.String("remote", r.RemoteAddr))
	}
}
