package sagalog

import "context"

// Repository persists attempt log entries. The sequencer only appends;
// reads serve the status and reconciliation endpoints.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	// GetLatest returns ErrNotFound when the attempt has no rows.
	GetLatest(ctx context.Context, attemptID string) (*Entry, error)
	// ListOrphaned returns the newest ORPHANED rows first.
	ListOrphaned(ctx context.Context, limit int) ([]Entry, error)
}
