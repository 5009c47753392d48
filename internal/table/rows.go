package table

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gridstore/gridstore/internal/persist"
)

// RowStore owns the ordered row collection. Every mutation writes the
// full collection back to persistence before returning; a persistence
// failure is returned to the caller and the in-memory change stands
// (last-write-wins on the next successful mutation).
//
// The engine has one logical writer, but the store is reached from HTTP
// handlers and the seed goroutine, so access is mutex-guarded.
type RowStore struct {
	mu           sync.RWMutex
	rows         []Row
	store        persist.Store
	fromSnapshot bool
}

// NewRowStore initializes the store from persistence. An absent or
// unreadable snapshot falls back to the built-in default rows.
func NewRowStore(ctx context.Context, st persist.Store) *RowStore {
	rs := &RowStore{store: st}

	raw, found, err := st.Get(ctx, persist.KeyRows)
	if err != nil {
		slog.Warn("row snapshot read failed, using defaults", "error", err)
		rs.rows = DefaultRows()
		return rs
	}
	if !found {
		rs.rows = DefaultRows()
		return rs
	}

	var rows []Row
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		slog.Warn("row snapshot corrupt, using defaults", "error", err)
		rs.rows = DefaultRows()
		return rs
	}
	rs.rows = rows
	rs.fromSnapshot = true
	return rs
}

// FromSnapshot reports whether the store was initialized from a
// persisted snapshot rather than the built-in defaults. The startup
// seed fetch is skipped when a snapshot already exists.
func (rs *RowStore) FromSnapshot() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.fromSnapshot
}

// Rows returns a snapshot copy of the collection. Rows are cloned so
// callers cannot mutate store state through the snapshot.
func (rs *RowStore) Rows() []Row {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make([]Row, len(rs.rows))
	for i, r := range rs.rows {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of rows.
func (rs *RowStore) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rows)
}

// ReplaceAll overwrites the entire collection. Id uniqueness is the
// caller's responsibility; no validation is performed here.
func (rs *RowStore) ReplaceAll(ctx context.Context, rows []Row) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.rows = make([]Row, len(rows))
	for i, r := range rows {
		rs.rows[i] = r.Clone()
	}
	return rs.persistLocked(ctx)
}

// Update replaces the row whose id matches, preserving its position.
// An unmatched id is a documented no-op; the collection still persists
// afterwards either way.
func (rs *RowStore) Update(ctx context.Context, row Row) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	id := row.ID()
	for i, r := range rs.rows {
		if r.ID() == id {
			rs.rows[i] = row.Clone()
			break
		}
	}
	return rs.persistLocked(ctx)
}

// Delete removes any row with the given id. Deleting an absent id is
// idempotent and leaves the collection unchanged.
func (rs *RowStore) Delete(ctx context.Context, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	kept := rs.rows[:0]
	for _, r := range rs.rows {
		if r.ID() != id {
			kept = append(kept, r)
		}
	}
	rs.rows = kept
	return rs.persistLocked(ctx)
}

func (rs *RowStore) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(rs.rows)
	if err != nil {
		return fmt.Errorf("encode row snapshot: %w", err)
	}
	if err := rs.store.Set(ctx, persist.KeyRows, string(data)); err != nil {
		return fmt.Errorf("persist rows: %w", err)
	}
	return nil
}
