package progress

import (
	"os"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s
}

func TestLoadMissingKey(t *testing.T) {
	s := newStore(t)
	if _, ok := s.Load("nope"); ok {
		t.Error("expected missing key to load as absent")
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := newStore(t)
	if err := s.Save("arena:best", []byte(`{"bestScore":42}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	blob, ok := s.Load("arena:best")
	if !ok {
		t.Fatal("expected blob")
	}
	if string(blob) != `{"bestScore":42}` {
		t.Errorf("blob = %s", blob)
	}
}

func TestKeysAreSanitized(t *testing.T) {
	s := newStore(t)
	if err := s.Save("idle:user/../../etc", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := s.Load("idle:user/../../etc"); !ok {
		t.Error("expected sanitized key to round-trip")
	}
	// Nothing escaped the store directory.
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 file in store dir, got %d", len(entries))
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	s.Save("k", []byte("v"))
	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Load("k"); ok {
		t.Error("expected key gone after delete")
	}
	// Deleting a missing key is fine.
	if err := s.Delete("k"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestLoadJSONCorruptBlob(t *testing.T) {
	s := newStore(t)
	path := filepath.Join(s.dir, "bad.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	var v struct{ Score int }
	if LoadJSON(s, "bad", &v) {
		t.Error("corrupt blob should read as absent")
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	s := newStore(t)
	in := map[string]int{"score": 7}
	if err := SaveJSON(s, "k", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	var out map[string]int
	if !LoadJSON(s, "k", &out) {
		t.Fatal("expected blob")
	}
	if out["score"] != 7 {
		t.Errorf("score = %d, want 7", out["score"])
	}
}
