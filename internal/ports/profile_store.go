package ports

import "context"

// Port: a durable key-value surface for the traveler's profile records.
// Values are opaque serialized records; readers must parse them defensively.
type ProfileStore interface {
	// Return the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
