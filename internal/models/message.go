package models

import "time"

// Message is one immutable chat message in a room. Rows are never updated or
// deleted by the service; ordering is SentAt with the auto-increment ID as the
// tie breaker.
type Message struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RoomID   uint   `gorm:"not null;index:idx_msg_room" json:"room_id"`
	SenderID uint   `gorm:"not null" json:"sender_id"`
	Sender   User   `gorm:"foreignKey:SenderID" json:"-"`
	Text     string `gorm:"type:text;not null" json:"text"`
	// SentAt is assigned by the server when the row is created.
	SentAt time.Time `gorm:"autoCreateTime;index:idx_msg_room" json:"sent_at"`
}
