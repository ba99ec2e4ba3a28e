package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL == "" || cfg.AuthBaseURL == "" {
		t.Fatalf("defaults missing: %+v", cfg)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config file mode = %o; want 600", perm)
	}
}

func TestLoadFile_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_url: https://api.test.local\nauth_url: https://auth.test.local\ndebug: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://api.test.local" {
		t.Fatalf("api url = %q", cfg.APIBaseURL)
	}
	if cfg.AuthBaseURL != "https://auth.test.local" {
		t.Fatalf("auth url = %q", cfg.AuthBaseURL)
	}
	if !cfg.Debug {
		t.Fatalf("debug not read from file")
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_url: https://api.file.local\nauth_url: https://auth.file.local\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PYTHIA_API_URL", "https://api.env.local")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://api.env.local" {
		t.Fatalf("api url = %q; env must win over the file", cfg.APIBaseURL)
	}
	if cfg.AuthBaseURL != "https://auth.file.local" {
		t.Fatalf("auth url = %q; unset env vars must not clobber the file", cfg.AuthBaseURL)
	}
}

func TestLoadFile_RejectsEmptyURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: \"\"\nauth_url: https://auth.test.local\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for empty api_url")
	}
}

func TestDir_HonorsOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	t.Setenv("PYTHIA_DIR", dir)

	got, err := Dir()
	if err != nil {
		t.Fatalf("dir: %v", err)
	}
	if got != dir {
		t.Fatalf("dir = %q; want %q", got, dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("state dir not created: %v", err)
	}
}
