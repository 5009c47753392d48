// Package persist provides the key-value snapshot store backing the
// table engine. The engine only ever needs get/set of strings; the
// backends here (bbolt file store, Postgres, in-memory) all satisfy the
// same small interface.
package persist

import "context"

// Logical snapshot keys. Each holds a JSON-encoded snapshot.
const (
	KeyRows    = "rows"
	KeyColumns = "columns"
)

// Store is the persistence adapter consumed by the table engine.
//
// Get returns the stored value and whether the key was present. Set
// overwrites unconditionally; concurrent writers are last-write-wins.
// Write errors propagate to the caller rather than being swallowed, so
// a failed persist is never silent.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
