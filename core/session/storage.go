package session

import "context"

// Storage is the durable key-value store a session survives process restarts
// in. All operations are best-effort: the Store logs failures and keeps the
// in-memory session authoritative.
type Storage interface {
	// GetItem returns the stored value, or "" when the key is absent.
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
