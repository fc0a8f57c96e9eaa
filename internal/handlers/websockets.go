package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"anomserver/internal/logger"
	ws "anomserver/internal/services/websocket"
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler registers a viewer for processing-progress updates.
func ViewWebsocketHandler(hub *ws.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		defer connection.Close()

		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				break
			}
		}
	}
}
