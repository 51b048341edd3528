package models

import "time"

// Outbound event type tags.
const (
	EventTypeHistory = "chat_history"
	EventTypeMessage = "chat_message"
)

// Event is a tagged outbound wire event. Each kind is its own struct rather
// than a loosely-typed map, so the boundary stays validated.
type Event interface {
	EventType() string
}

// MessageView is one message as it appears on the wire.
type MessageView struct {
	ID     uint   `json:"id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	SentAt string `json:"sent_at"`
}

// NewMessageView renders a stored message for the wire. Timestamps go out as
// ISO 8601 in UTC.
func NewMessageView(m *Message, sender string) MessageView {
	return MessageView{
		ID:     m.ID,
		Sender: sender,
		Text:   m.Text,
		SentAt: m.SentAt.UTC().Format(time.RFC3339),
	}
}

// HistoryEvent is the one-time payload of recent messages, oldest first, sent
// right after a connection joins its room.
type HistoryEvent struct {
	Type     string        `json:"type"`
	Messages []MessageView `json:"messages"`
}

func NewHistoryEvent(messages []MessageView) HistoryEvent {
	if messages == nil {
		messages = []MessageView{}
	}
	return HistoryEvent{Type: EventTypeHistory, Messages: messages}
}

func (HistoryEvent) EventType() string { return EventTypeHistory }

// MessageEvent is the live broadcast for one appended message, delivered to
// every group member including the sender.
type MessageEvent struct {
	Type   string `json:"type"`
	ID     uint   `json:"id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	SentAt string `json:"sent_at"`
}

func NewMessageEvent(m *Message, sender string) MessageEvent {
	view := NewMessageView(m, sender)
	return MessageEvent{
		Type:   EventTypeMessage,
		ID:     view.ID,
		Sender: view.Sender,
		Text:   view.Text,
		SentAt: view.SentAt,
	}
}

func (MessageEvent) EventType() string { return EventTypeMessage }

// InboundPayload is the only recognized client-to-server message shape.
type InboundPayload struct {
	Message string `json:"message"`
}

// Incoming carries a decoded client message from a connection to the hub.
type Incoming struct {
	RoomID     uint
	ConnID     string
	SenderID   uint
	SenderName string
	Text       string
}

// RoomEvent routes a broadcast event to its room inside the hub.
type RoomEvent struct {
	RoomID uint
	Event  MessageEvent
}
