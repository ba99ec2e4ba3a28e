package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the client configuration: where the backends live.
//
// Resolution order: built-in defaults, then ~/.pythia/config.yaml, then
// environment variables. Env wins so scripts can point a single invocation
// at a staging backend without editing the file.
type Config struct {
	// APIBaseURL is the event persistence + interpretation backend.
	APIBaseURL string `yaml:"api_url" env:"PYTHIA_API_URL"`
	// AuthBaseURL is the identity provider.
	AuthBaseURL string `yaml:"auth_url" env:"PYTHIA_AUTH_URL"`
	// Debug enables debug-level logging on scriptable commands.
	Debug bool `yaml:"debug" env:"PYTHIA_DEBUG"`
}

func defaults() Config {
	return Config{
		APIBaseURL:  "https://api.pythia.example.com",
		AuthBaseURL: "https://auth.pythia.example.com",
	}
}

// Dir returns the per-user state directory (~/.pythia), honoring PYTHIA_DIR
// for tests and fixtures. The directory is created on first use.
func Dir() (string, error) {
	if d := os.Getenv("PYTHIA_DIR"); d != "" {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return "", err
		}
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	d := filepath.Join(home, ".pythia")
	if err := os.MkdirAll(d, 0o700); err != nil {
		return "", err
	}
	return d, nil
}

// Load reads the config file (creating a default one on first run) and
// applies the environment overlay.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(filepath.Join(dir, "config.yaml"))
}

// LoadFile is Load with an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := defaults()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// First run: persist the defaults so the file is there to edit.
		if werr := writeDefault(path); werr != nil {
			return Config{}, werr
		}
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("api_url must not be empty")
	}
	if cfg.AuthBaseURL == "" {
		return Config{}, errors.New("auth_url must not be empty")
	}
	return cfg, nil
}

func writeDefault(path string) error {
	b, err := yaml.Marshal(defaults())
	if err != nil {
		return err
	}
	// Config may hold backend URLs with embedded credentials; keep it private.
	return os.WriteFile(path, b, 0o600)
}
