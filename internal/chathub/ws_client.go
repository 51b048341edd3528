package chathub

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"pairchat/backend/internal/config"
	"pairchat/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketClient implements chathub.Client over a gorilla/websocket
// connection.
type WebSocketClient struct {
	ConnID   string
	UserID   uint
	Username string
	RoomID   uint
	Conn     *websocket.Conn
	Hub      *ManagerService
	Send     chan models.Event
}

func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, userID uint, username string, roomID uint) *WebSocketClient {
	return &WebSocketClient{
		ConnID:   uuid.NewString(),
		UserID:   userID,
		Username: username,
		RoomID:   roomID,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan models.Event, config.SendBufferSize),
	}
}

func (c *WebSocketClient) GetConnID() string                   { return c.ConnID }
func (c *WebSocketClient) GetUserID() uint                     { return c.UserID }
func (c *WebSocketClient) GetUsername() string                 { return c.Username }
func (c *WebSocketClient) GetRoomID() uint                     { return c.RoomID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Event { return c.Send }

// Run starts the pumps for this connection.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops writePump. readPump stops on its
// own once the connection is closed.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump reads client payloads and hands them to the hub. A payload without
// a non-empty "message" field is a protocol violation and closes the
// connection.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var payload models.InboundPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			log.Printf("Protocol violation from client %s: %v", c.ConnID, err)
			break
		}
		if strings.TrimSpace(payload.Message) == "" {
			log.Printf("Protocol violation from client %s: empty message", c.ConnID)
			break
		}

		c.Hub.IncomingCh <- models.Incoming{
			RoomID:     c.RoomID,
			ConnID:     c.ConnID,
			SenderID:   c.UserID,
			SenderName: c.Username,
			Text:       payload.Message,
		}
	}
}

// writePump drains the Send channel into the WebSocket and keeps the
// connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// Hub closed the channel; tell the peer and stop.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Error encoding event for client %s: %v", c.ConnID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
