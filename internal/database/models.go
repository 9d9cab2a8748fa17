package database

import "time"

// AuditEntry is one mirrored audit log line.
type AuditEntry struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	UserID   int64     `db:"user_id"`
	Role     string    `db:"role"`
	Message  string    `db:"message"`
	LoggedAt time.Time `db:"logged_at"` // time the exchange happened, UTC
}
