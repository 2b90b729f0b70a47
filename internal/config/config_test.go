package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MemoryPages != DefaultMemoryPages {
		t.Errorf("MemoryPages = %d, want %d", cfg.MemoryPages, DefaultMemoryPages)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be off by default")
	}
	if cfg.Cache.Path != filepath.Join(".ril", "cache.db") {
		t.Errorf("cache path = %q", cfg.Cache.Path)
	}
}

func TestLoad_ReadsYaml(t *testing.T) {
	dir := t.TempDir()
	src := `
output: out/main.wat
memory_pages: 4
cache:
  enabled: true
  path: build/cache.db
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output != "out/main.wat" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.MemoryPages != 4 {
		t.Errorf("MemoryPages = %d, want 4", cfg.MemoryPages)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Path != "build/cache.db" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoad_ClampsInvalidPages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("memory_pages: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MemoryPages != DefaultMemoryPages {
		t.Errorf("MemoryPages = %d, want %d", cfg.MemoryPages, DefaultMemoryPages)
	}
}

func TestLoad_MalformedYamlFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected a parse error")
	}
}
