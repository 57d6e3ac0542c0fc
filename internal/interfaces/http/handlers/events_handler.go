package handlers

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
)

// EventsHandler streams pairing decision events to operator consoles over
// server-sent events.
type EventsHandler struct {
	hub *Hub
}

// NewEventsHandler creates an SSE handler backed by the hub.
func NewEventsHandler(hub *Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /events. Each decision is emitted as one SSE message
// named "decision" with the `{requestId, entityId, decision, ts}` payload.
func (h *EventsHandler) Stream(c *gin.Context) {
	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return false
			}
			c.SSEvent("decision", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

//Personal.AI order the ending
