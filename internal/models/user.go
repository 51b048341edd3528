package models

import "time"

// User is a registered participant. The numeric ID doubles as the sort key
// when a pair of users is put into canonical order for room lookup.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
