package table

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gridstore/gridstore/internal/persist"
)

func newTestRegistry(t *testing.T) (*ColumnRegistry, *persist.MemoryStore) {
	t.Helper()
	mem := persist.NewMemory()
	return NewColumnRegistry(context.Background(), mem), mem
}

func TestColumnRegistry_DefaultsWhenEmpty(t *testing.T) {
	cr, _ := newTestRegistry(t)

	if len(cr.Columns()) != len(DefaultColumns()) {
		t.Errorf("Columns() = %d defs, want %d", len(cr.Columns()), len(DefaultColumns()))
	}
}

func TestColumnRegistry_CorruptSnapshotFallsBack(t *testing.T) {
	ctx := context.Background()
	mem := persist.NewMemory()
	mem.Set(ctx, persist.KeyColumns, "[broken")

	cr := NewColumnRegistry(ctx, mem)
	if len(cr.Columns()) != len(DefaultColumns()) {
		t.Errorf("corrupt snapshot should fall back to defaults")
	}
}

func TestColumnRegistry_ToggleVisibility(t *testing.T) {
	cr, _ := newTestRegistry(t)
	ctx := context.Background()

	if err := cr.ToggleVisibility(ctx, FieldName); err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}

	for _, c := range cr.Columns() {
		if c.Key == FieldName && c.Visible {
			t.Error("toggle did not flip visibility")
		}
	}

	if err := cr.ToggleVisibility(ctx, FieldName); err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	for _, c := range cr.Columns() {
		if c.Key == FieldName && !c.Visible {
			t.Error("second toggle did not flip back")
		}
	}
}

func TestColumnRegistry_ToggleUnknownKeyIsNoOp(t *testing.T) {
	cr, _ := newTestRegistry(t)

	before := cr.Columns()
	if err := cr.ToggleVisibility(context.Background(), "ghost"); err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	after := cr.Columns()

	for i := range before {
		if before[i] != after[i] {
			t.Errorf("unknown key changed state: %+v vs %+v", before[i], after[i])
		}
	}
}

func TestColumnRegistry_AddAppendsAtEnd(t *testing.T) {
	cr, _ := newTestRegistry(t)

	def := ColumnDef{Key: "city", Label: "City", Visible: true}
	if err := cr.Add(context.Background(), def); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	cols := cr.Columns()
	if cols[len(cols)-1] != def {
		t.Errorf("last column = %+v, want %+v", cols[len(cols)-1], def)
	}
}

func TestColumnRegistry_AddDuplicateKeyRejected(t *testing.T) {
	cr, _ := newTestRegistry(t)

	err := cr.Add(context.Background(), ColumnDef{Key: FieldName, Label: "Name 2", Visible: true})
	if !errors.Is(err, ErrDuplicateColumn) {
		t.Fatalf("Add() error = %v, want ErrDuplicateColumn", err)
	}
	if len(cr.Columns()) != len(DefaultColumns()) {
		t.Error("rejected add still changed the registry")
	}
}

func TestColumnRegistry_ReorderVerbatim(t *testing.T) {
	cr, _ := newTestRegistry(t)

	cols := cr.Columns()
	reversed := make([]ColumnDef, len(cols))
	for i, c := range cols {
		reversed[len(cols)-1-i] = c
	}

	if err := cr.Reorder(context.Background(), reversed); err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}

	got := cr.Columns()
	for i := range reversed {
		if got[i] != reversed[i] {
			t.Fatalf("order = %+v, want %+v", got, reversed)
		}
	}
}

func TestColumnRegistry_VisibleKeysInDisplayOrder(t *testing.T) {
	cr, _ := newTestRegistry(t)

	// Defaults: id hidden, the other four visible.
	want := []string{FieldName, FieldEmail, FieldAge, FieldRole}
	got := cr.VisibleKeys()

	if len(got) != len(want) {
		t.Fatalf("VisibleKeys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("VisibleKeys() = %v, want %v", got, want)
		}
	}
}

func TestColumnRegistry_MutationsPersist(t *testing.T) {
	cr, mem := newTestRegistry(t)
	ctx := context.Background()

	if err := cr.Add(ctx, ColumnDef{Key: "city", Label: "City", Visible: true}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	raw, found, err := mem.Get(ctx, persist.KeyColumns)
	if err != nil || !found {
		t.Fatalf("snapshot missing after mutation: found=%v err=%v", found, err)
	}

	var persisted []ColumnDef
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if len(persisted) != len(DefaultColumns())+1 {
		t.Errorf("persisted %d columns, want %d", len(persisted), len(DefaultColumns())+1)
	}
}

func TestColumnRegistry_WriteFailurePropagates(t *testing.T) {
	cr := NewColumnRegistry(context.Background(), failingStore{})

	err := cr.ToggleVisibility(context.Background(), FieldName)
	if err == nil {
		t.Fatal("expected persistence failure to propagate")
	}
}
