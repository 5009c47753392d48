package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gridstore/gridstore/internal/persist"
)

// ErrDuplicateColumn is returned by Add when a column with the same key
// already exists.
var ErrDuplicateColumn = errors.New("duplicate column key")

// ColumnRegistry owns the ordered column definitions. Slice order is
// display order. Every mutation writes the full list back to
// persistence; write failures propagate to the caller.
type ColumnRegistry struct {
	mu    sync.RWMutex
	cols  []ColumnDef
	store persist.Store
}

// NewColumnRegistry initializes the registry from persistence, falling
// back to the built-in default columns when the snapshot is absent or
// unreadable.
func NewColumnRegistry(ctx context.Context, st persist.Store) *ColumnRegistry {
	cr := &ColumnRegistry{store: st}

	raw, found, err := st.Get(ctx, persist.KeyColumns)
	if err != nil {
		slog.Warn("column snapshot read failed, using defaults", "error", err)
		cr.cols = DefaultColumns()
		return cr
	}
	if !found {
		cr.cols = DefaultColumns()
		return cr
	}

	var cols []ColumnDef
	if err := json.Unmarshal([]byte(raw), &cols); err != nil {
		slog.Warn("column snapshot corrupt, using defaults", "error", err)
		cr.cols = DefaultColumns()
		return cr
	}
	cr.cols = cols
	return cr
}

// Columns returns a snapshot copy of the ordered definitions.
func (cr *ColumnRegistry) Columns() []ColumnDef {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	out := make([]ColumnDef, len(cr.cols))
	copy(out, cr.cols)
	return out
}

// VisibleKeys returns the keys of visible columns in display order.
// This is the projection used by CSV export.
func (cr *ColumnRegistry) VisibleKeys() []string {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	var keys []string
	for _, c := range cr.cols {
		if c.Visible {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// ToggleVisibility flips the Visible flag of the matching column. An
// unknown key is a no-op, but the list still persists afterwards.
func (cr *ColumnRegistry) ToggleVisibility(ctx context.Context, key string) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	for i := range cr.cols {
		if cr.cols[i].Key == key {
			cr.cols[i].Visible = !cr.cols[i].Visible
			break
		}
	}
	return cr.persistLocked(ctx)
}

// Add appends a column at the end of the order. A key that already
// exists in the registry is rejected with ErrDuplicateColumn: column
// keys index row fields, so two columns sharing a key could not
// project distinctly.
func (cr *ColumnRegistry) Add(ctx context.Context, def ColumnDef) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	for _, c := range cr.cols {
		if c.Key == def.Key {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, def.Key)
		}
	}
	cr.cols = append(cr.cols, def)
	return cr.persistLocked(ctx)
}

// Reorder replaces the entire ordered list verbatim. The caller (the
// presentation layer translating a drag gesture) is trusted to pass a
// permutation; no validation is performed.
func (cr *ColumnRegistry) Reorder(ctx context.Context, newOrder []ColumnDef) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	cr.cols = make([]ColumnDef, len(newOrder))
	copy(cr.cols, newOrder)
	return cr.persistLocked(ctx)
}

func (cr *ColumnRegistry) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(cr.cols)
	if err != nil {
		return fmt.Errorf("encode column snapshot: %w", err)
	}
	if err := cr.store.Set(ctx, persist.KeyColumns, string(data)); err != nil {
		return fmt.Errorf("persist columns: %w", err)
	}
	return nil
}
