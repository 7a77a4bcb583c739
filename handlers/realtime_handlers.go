package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio/api/realtime"
)

type RealtimeHandlers struct {
	Server *realtime.Server
}

func NewRealtimeHandlers(server *realtime.Server) *RealtimeHandlers {
	return &RealtimeHandlers{Server: server}
}

// Events streams the activity feed as Server-Sent Events until the client leaves.
func (h *RealtimeHandlers) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	h.Server.ServeSSE(c.Request.Context(), c.Writer)
}

func (h *RealtimeHandlers) WebSocket(c *gin.Context) {
	h.Server.WebSocketHandler().ServeHTTP(c.Writer, c.Request)
}

func (h *RealtimeHandlers) Stats(c *gin.Context) {
	hub := h.Server.Hub()
	byKind := hub.Stats()
	respondOK(c, gin.H{
		"connections": hub.Count(),
		"sse":         byKind["sse"],
		"websocket":   byKind["websocket"],
	})
}
