// internal/domain/journal/entry.go
package journal

import (
	"database/sql"
	"time"
)

// EntryKind tells what triggered an outbound notification.
type EntryKind string

const (
	EntryKindStatus EntryKind = "status" // homework status transition
	EntryKindError  EntryKind = "error"  // failed polling cycle
)

// Entry is one outbound notification attempt.
// Corresponds to the 'notification_journal' table.
type Entry struct {
	ID        int64
	Kind      EntryKind
	ChatID    int64
	Message   string
	Delivered bool
	SendError sql.NullString // Delivery error text when Delivered is false
	CreatedAt time.Time
}
