package models

import "time"

// Announcement represents a dated notice ("pengumuman"). Announcements are
// immutable once created; corrections are delete + create.
type Announcement struct {
	ID          string    `db:"id" json:"id"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
