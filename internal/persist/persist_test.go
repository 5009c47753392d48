package persist

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, found, err := s.Get(ctx, KeyRows)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found a key in an empty store")
	}

	if err := s.Set(ctx, KeyRows, `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, found, err := s.Get(ctx, KeyRows)
	if err != nil || !found {
		t.Fatalf("Get() after Set: found=%v err=%v", found, err)
	}
	if v != `[{"id":"1"}]` {
		t.Errorf("Get() = %q, want the stored value", v)
	}
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	s.Set(ctx, KeyColumns, "first")
	s.Set(ctx, KeyColumns, "second")

	v, _, _ := s.Get(ctx, KeyColumns)
	if v != "second" {
		t.Errorf("Get() = %q, want %q", v, "second")
	}
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")

	s, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}
	if err := s.Set(ctx, KeyRows, "payload"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	v, found, err := s.Get(ctx, KeyRows)
	if err != nil || !found {
		t.Fatalf("Get() after reopen: found=%v err=%v", found, err)
	}
	if v != "payload" {
		t.Errorf("Get() = %q, want %q", v, "payload")
	}
}

func TestBoltStore_MissingKey(t *testing.T) {
	s, err := OpenBolt(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}
	defer s.Close()

	_, found, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found a key that was never set")
	}
}
