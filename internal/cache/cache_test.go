package cache

import (
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), ".ril", "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openStore(t)
	key := Key("fun main = { }", 1)

	if _, ok, err := s.Get(key); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}
	if err := s.Put(key, "(module)"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	out, ok, err := s.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if out != "(module)" {
		t.Errorf("output = %q", out)
	}
}

func TestStore_PutReplaces(t *testing.T) {
	s := openStore(t)
	key := Key("val x = 1", 1)
	if err := s.Put(key, "old"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(key, "new"); err != nil {
		t.Fatal(err)
	}
	out, ok, err := s.Get(key)
	if err != nil || !ok || out != "new" {
		t.Fatalf("Get = %q, %v, %v", out, ok, err)
	}
}

func TestKey_SensitiveToSourceAndPages(t *testing.T) {
	base := Key("val x = 1", 1)
	if Key("val x = 1", 1) != base {
		t.Error("key should be deterministic")
	}
	if Key("val x = 2", 1) == base {
		t.Error("key should change with the source")
	}
	if Key("val x = 1", 2) == base {
		t.Error("key should change with the page count")
	}
}
