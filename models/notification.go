package models

import "time"

// Notification is an outbound sink row: the core writes these and the
// frontend polls or listens on the websocket hub. Nothing in the core reads
// them back.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	Title     string    `gorm:"type:varchar(100)" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Link      string    `gorm:"type:varchar(255)" json:"link"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	SentAt    time.Time `gorm:"not null" json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
}
