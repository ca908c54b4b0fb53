package api

import (
	"phewasview/domain/phewas"
)

// LoadEventBroadcaster adapts the SSEHub to ports.ProgressBroadcaster
type LoadEventBroadcaster struct {
	sseHub *SSEHub
}

// NewLoadEventBroadcaster wraps hub
func NewLoadEventBroadcaster(sseHub *SSEHub) *LoadEventBroadcaster {
	return &LoadEventBroadcaster{sseHub: sseHub}
}

// BroadcastLoad converts a load event into the stream payload
func (b *LoadEventBroadcaster) BroadcastLoad(event phewas.LoadEvent) {
	data := map[string]interface{}{"rows": event.Rows}
	if event.Token != "" {
		data["token"] = event.Token
	}
	if event.Symbol != "" {
		data["symbol"] = event.Symbol
	}
	if event.Message != "" {
		data["message"] = event.Message
	}

	b.sseHub.Broadcast(StreamEvent{
		SessionID: event.SessionID,
		EventType: event.EventType,
		Progress:  event.Progress,
		Data:      data,
		Timestamp: event.Timestamp,
	})
}
