package sqlite

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "state.db")); os.IsNotExist(err) {
		t.Error("state.db should exist")
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := db.Save("logicalX_user", []byte(`{"xp":10}`)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	db.Close()

	db2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db2.Close()

	got, ok, err := db2.Load("logicalX_user")
	if err != nil || !ok {
		t.Fatalf("Load() after reopen = ok %v, err %v", ok, err)
	}
	if string(got) != `{"xp":10}` {
		t.Errorf("value = %s", got)
	}
}

// ─── Key-Value ──────────────────────────────────────────────────────────────

func TestLoad_Missing(t *testing.T) {
	db := newTestDB(t)

	got, ok, err := db.Load("nope")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if ok || got != nil {
		t.Errorf("Load(missing) = %q, %v; want nil, false", got, ok)
	}
}

func TestSave_Overwrite(t *testing.T) {
	db := newTestDB(t)

	if err := db.Save("k", []byte("one")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := db.Save("k", []byte("two")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, ok, err := db.Load("k")
	if err != nil || !ok {
		t.Fatalf("Load() = ok %v, err %v", ok, err)
	}
	if string(got) != "two" {
		t.Errorf("value = %q, want %q", got, "two")
	}
}

func TestDeleteBefore(t *testing.T) {
	db := newTestDB(t)

	keys := []string{
		"logicalX_tasks_2026-01-01",
		"logicalX_tasks_2026-01-02",
		"logicalX_tasks_2026-01-03",
		"logicalX_user",
	}
	for _, k := range keys {
		if err := db.Save(k, []byte("[]")); err != nil {
			t.Fatalf("Save(%s): %v", k, err)
		}
	}

	n, err := db.DeleteBefore("logicalX_tasks_", "2026-01-03")
	if err != nil {
		t.Fatalf("DeleteBefore() error: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d rows, want 2", n)
	}

	for k, want := range map[string]bool{
		"logicalX_tasks_2026-01-01": false,
		"logicalX_tasks_2026-01-02": false,
		"logicalX_tasks_2026-01-03": true,
		"logicalX_user":             true,
	} {
		_, ok, err := db.Load(k)
		if err != nil {
			t.Fatalf("Load(%s): %v", k, err)
		}
		if ok != want {
			t.Errorf("%s present = %v, want %v", k, ok, want)
		}
	}
}

func TestDeleteBefore_PrefixIsLiteral(t *testing.T) {
	db := newTestDB(t)

	// LIKE wildcards in the prefix must not match other keys.
	_ = db.Save("a_b1", []byte("x"))
	_ = db.Save("axb1", []byte("x"))

	n, err := db.DeleteBefore("a_b", "2")
	if err != nil {
		t.Fatalf("DeleteBefore() error: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}
	if _, ok, _ := db.Load("axb1"); !ok {
		t.Error("axb1 should survive")
	}
}
