package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.framecull/framecull.yaml.
type Config struct {
	// DataDir is the labeled training data root, containing keep/ and exclude/.
	DataDir string `yaml:"data_dir"`
	// ModelPath is the canonical path of the current classifier binary.
	// Its metadata sibling is {ModelPath}.meta.json.
	ModelPath string `yaml:"model_path"`
	// BlocklistPath is the persisted blocklist JSON file.
	BlocklistPath string `yaml:"blocklist_path"`
	// Device is a hint forwarded to the embedding service ("cpu" or "cuda").
	Device string `yaml:"device,omitempty"`
}

// FramecullDir returns the absolute path to ~/.framecull/.
func FramecullDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".framecull"), nil
}

// ConfigPath returns the absolute path to ~/.framecull/framecull.yaml.
func ConfigPath() (string, error) {
	dir, err := FramecullDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "framecull.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first framecull init.
func DefaultConfig() (*Config, error) {
	dir, err := FramecullDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataDir:       filepath.Join(dir, "training-data"),
		ModelPath:     filepath.Join(dir, "models", "classifier.bin"),
		BlocklistPath: filepath.Join(dir, "blocklist.json"),
		Device:        "cpu",
	}, nil
}

// Load reads and parses ~/.framecull/framecull.yaml.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	for _, p := range []*string{&cfg.DataDir, &cfg.ModelPath, &cfg.BlocklistPath} {
		*p, err = ExpandPath(*p)
		if err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.framecull/framecull.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
