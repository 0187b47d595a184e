package announcement

import "time"

// Announcement mirrors the announcements table: estate-wide broadcasts
// written by admins and visible to every member.
type Announcement struct {
	ID        string
	AdminID   string
	Title     string
	Content   string
	CreatedAt time.Time
}

// BroadcastParams is the validated creation payload.
type BroadcastParams struct {
	AdminID string `validate:"required"`
	Title   string `validate:"required,max=200"`
	Content string `validate:"required"`
}
