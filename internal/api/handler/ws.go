package handler

import (
	"net/http"
	"strconv"
	"strings"

	"pairchat/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsToken pulls the JWT from the Authorization header, falling back to the
// "token" query parameter since browsers cannot set headers on a WebSocket
// handshake.
func wsToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[len("Bearer "):]
	}
	return c.Query("token")
}

// ServeWebSocket upgrades the connection and joins it to the room's broadcast
// group. Unauthenticated callers and non-participants are rejected before the
// upgrade; they never receive a history event.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString := wsToken(c)
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	ident, err := parseToken(tokenString, []byte(h.Cfg.JWTSecret))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	roomID, err := strconv.ParseUint(c.Param("room_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
		return
	}

	room, err := h.Storage.GetRoomByID(uint(roomID))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up room"})
		return
	}
	if room == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	if !room.HasParticipant(ident.UserID) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not a participant of this room"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, ident.UserID, ident.Username, room.ID)
	h.Hub.RegisterCh <- client
	client.Run()
}
