package models

import "time"

// DeviceToken is a push delivery address registered by a client device.
type DeviceToken struct {
	UserID     int       `db:"user_id" json:"user_id"`
	Token      string    `db:"token" json:"token"`
	Device     string    `db:"device" json:"device"`
	LastUsedAt time.Time `db:"last_used_at" json:"last_used_at"`
}
