package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultPingInterval keeps idle streams open through proxies
const DefaultPingInterval = 30 * time.Second

// SSEClient represents a connected SSE client
type SSEClient struct {
	SessionID string
	Channel   chan StreamEvent
}

// StreamEvent is the payload written to SSE clients of one session
type StreamEvent struct {
	SessionID string                 `json:"session_id"`
	EventType string                 `json:"event_type"`
	Progress  float64                `json:"progress"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// SSEHub fans load progress out to the browsers watching each session
type SSEHub struct {
	clients    map[string]map[chan StreamEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan StreamEvent
	done       chan struct{}
	closeOnce  sync.Once

	PingInterval time.Duration
}

// NewSSEHub creates a hub and starts its dispatch loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:      make(map[string]map[chan StreamEvent]bool),
		register:     make(chan SSEClient, 10),
		unregister:   make(chan SSEClient, 10),
		broadcast:    make(chan StreamEvent, 100),
		done:         make(chan struct{}),
		PingInterval: DefaultPingInterval,
	}

	go hub.run()
	return hub
}

// Close stops the dispatch loop
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *SSEHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan StreamEvent]bool)
			}
			h.clients[client.SessionID][client.Channel] = true
			log.Printf("[SSE] Client registered for session %s (total clients: %d)",
				client.SessionID, len(h.clients[client.SessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists {
				delete(clients, client.Channel)
				log.Printf("[SSE] Client unregistered from session %s (remaining clients: %d)",
					client.SessionID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.SessionID] {
				select {
				case clientChan <- event:
				default:
					log.Printf("[SSE] Client channel full for session %s, skipping event", event.SessionID)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Broadcast queues an event for the clients of event.SessionID
func (h *SSEHub) Broadcast(event StreamEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping event: %s", event.EventType)
	}
}

// Subscribe registers a listener for sessionID; call the returned func to leave
func (h *SSEHub) Subscribe(sessionID string) (<-chan StreamEvent, func(), bool) {
	ch := make(chan StreamEvent, 10)
	client := SSEClient{SessionID: sessionID, Channel: ch}
	select {
	case h.register <- client:
	default:
		return nil, nil, false
	}
	leave := func() {
		select {
		case h.unregister <- client:
		default:
		}
	}
	return ch, leave, true
}

// HandleSSE streams "load" events for the session named by ?session_id
func (h *SSEHub) HandleSSE(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id parameter required"})
		return
	}

	events, leave, ok := h.Subscribe(sessionID)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "SSE hub registration failed"})
		return
	}
	defer leave()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	ping := time.NewTicker(h.PingInterval)
	defer ping.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-events:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("load", string(payload))
			return true

		case <-ping.C:
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// GetActiveSessions returns sessions with connected clients
func (h *SSEHub) GetActiveSessions() []string {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	sessions := make([]string, 0, len(h.clients))
	for sessionID := range h.clients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetClientCount returns the number of connected clients for a session
func (h *SSEHub) GetClientCount(sessionID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}
