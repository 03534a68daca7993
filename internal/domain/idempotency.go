package domain

import "time"

// Idempotency records the outcome of a previously accepted event submission,
// keyed by (hotel_id, session_id, key). A retried POST with the same key
// returns the original event id instead of inserting a duplicate.
type Idempotency struct {
	ID        string    `gorm:"type:varchar(36);not null;primaryKey"`
	HotelID   string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_hotel_session_key,priority:1"`
	SessionID string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_hotel_session_key,priority:2"`
	Key       string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_hotel_session_key,priority:3"`
	EventID   string    `gorm:"type:varchar(36);not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
