package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"anomserver/internal/dto"
	"anomserver/internal/logger"
)

// HubService fans processing progress out to connected viewers. Slow or
// broken connections are dropped rather than allowed to stall a session.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		logger:     logger,
	}
}

func (h *HubService) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", h.GetClientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", h.GetClientCount())

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				err := client.WriteMessage(websocket.TextMessage, message)
				if err != nil {
					h.logger.Error("Error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *HubService) Register(client *websocket.Conn) {
	h.register <- client
}

func (h *HubService) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

// BroadcastProgress sends a progress update to every viewer. Drops the
// update when the hub is saturated; progress is advisory.
func (h *HubService) BroadcastProgress(p dto.Progress) {
	message, err := json.Marshal(p)
	if err != nil {
		h.logger.Error("Error encoding progress: %v", err)
		return
	}
	select {
	case h.broadcast <- message:
	default:
	}
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
