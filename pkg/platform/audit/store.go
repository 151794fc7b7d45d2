package audit

import "context"

// Store persists audit entries. Append-only: there is no update or delete.
// Implementations assign Sequence on append and return entries newest first.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, error)
	Count(ctx context.Context) (int64, error)
}
