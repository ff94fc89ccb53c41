// internal/domain/journal/repository.go
package journal

import "context"

// Repository persists the notification journal.
type Repository interface {
	Record(ctx context.Context, e *Entry) error
	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)
}
