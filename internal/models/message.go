package models

import "time"

// Message types.
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// Message delivery statuses.
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
	MessageStatusFailed    = "failed"
)

// MaxContentLength bounds text message content.
const MaxContentLength = 1000

// Message represents a chat message.
type Message struct {
	ID            int       `db:"id" json:"id"`
	RoomID        int       `db:"room_id" json:"room_id"`
	AuthorID      int       `db:"author_id" json:"author_id"`
	Content       string    `db:"content" json:"content"`
	Type          string    `db:"type" json:"type"`
	ReplyToID     *int      `db:"reply_to_id" json:"reply_to_id,omitempty"`
	ReplySnapshot *string   `db:"reply_snapshot" json:"reply_snapshot,omitempty"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ReadMarker records that a user has read a message.
type ReadMarker struct {
	MessageID int       `db:"message_id" json:"message_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	ReadAt    time.Time `db:"read_at" json:"read_at"`
}

// RoomEvent is broadcast over websocket connections for a room.
type RoomEvent struct {
	Type      string   `json:"type"`
	Message   *Message `json:"message,omitempty"`
	MessageID int      `json:"message_id,omitempty"`
	UserID    int      `json:"user_id,omitempty"`
}
