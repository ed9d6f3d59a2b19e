package models

import "time"

// Room kinds.
const (
	RoomKindDirect = "direct"
	RoomKindGroup  = "group"
)

// Room statuses.
const (
	RoomStatusActive   = "active"
	RoomStatusArchived = "archived"
	RoomStatusDeleted  = "deleted"
)

// Participant roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Room represents a chat room.
type Room struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Kind         string    `db:"kind" json:"kind"`
	CreatorID    int       `db:"creator_id" json:"creator_id"`
	Notification bool      `db:"notification" json:"notification"`
	Theme        string    `db:"theme" json:"theme"`
	Encrypted    bool      `db:"encrypted" json:"encrypted"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Participant is a user's membership record in a room.
type Participant struct {
	RoomID     int        `db:"room_id" json:"room_id"`
	UserID     int        `db:"user_id" json:"user_id"`
	Role       string     `db:"role" json:"role"`
	JoinedAt   time.Time  `db:"joined_at" json:"joined_at"`
	LastReadAt *time.Time `db:"last_read_at" json:"last_read_at,omitempty"`
}

// RoomSummary is the API-facing room view with per-caller counters.
type RoomSummary struct {
	Room
	MessageCount int `db:"message_count" json:"message_count"`
	UnreadCount  int `db:"unread_count" json:"unread_count"`
}

// RoomSettingsPatch carries the admin-editable room settings. Nil fields
// are left untouched.
type RoomSettingsPatch struct {
	Name         *string `json:"name,omitempty"`
	Notification *bool   `json:"notification,omitempty"`
	Theme        *string `json:"theme,omitempty"`
}
