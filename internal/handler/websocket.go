package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/model"
	"github.com/freelancer-ai/analysis-api/internal/websocket"
)

// WebSocketHandler handles WebSocket-related HTTP requests
type WebSocketHandler struct {
	hub *websocket.Hub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleConnection handles WebSocket connection upgrades
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	h.hub.ServeWS(c)
}

// GetConnectionStats returns WebSocket connection statistics
func (h *WebSocketHandler) GetConnectionStats(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data: gin.H{
			"total_connections":  h.hub.GetConnectionCount(),
			"connected_sessions": len(h.hub.GetConnectedSessions()),
		},
	})
}
