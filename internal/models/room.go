package models

import "time"

// ChatRoom is the single persistent conversation between two users.
// The pair is stored in canonical order (lower user id in User1ID) and the
// composite unique index guarantees at most one row per unordered pair.
type ChatRoom struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	User1ID uint `gorm:"not null;uniqueIndex:idx_room_pair,priority:1" json:"user1_id"`
	User2ID uint `gorm:"not null;uniqueIndex:idx_room_pair,priority:2" json:"user2_id"`
	User1   User `gorm:"foreignKey:User1ID" json:"-"`
	User2   User `gorm:"foreignKey:User2ID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the room's last activity. It is touched to the new
	// message's SentAt on every append.
	UpdatedAt time.Time `json:"updated_at"`
}

// HasParticipant reports whether the given user belongs to the room.
func (r *ChatRoom) HasParticipant(userID uint) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// PartnerID returns the other participant's id.
func (r *ChatRoom) PartnerID(userID uint) uint {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}
