// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents repository configuration stored in .paperref/config.json.
type Config struct {
	NumNodes           int `json:"num_nodes"`             // Related papers kept per paper; -1 keeps all
	HubCeiling         int `json:"hub_ceiling"`           // Second-level hub cutoff; -1 disables it
	BatchPauseMS       int `json:"batch_pause_ms"`        // Pause between batch chunks
	SecondLevelPauseMS int `json:"second_level_pause_ms"` // Pause before each second-level fetch
}

const (
	RepoDir     = ".paperref"
	ConfigFile  = "config.json"
	LibraryFile = "library.jsonl"
	CacheDir    = "cache"
	DBFile      = "library.db"

	// RootEnv overrides the directory repository discovery starts from.
	RootEnv = "PAPERREF_ROOT"
)

// Graph defaults.
const (
	DefaultNumNodes           = 20
	DefaultHubCeiling         = 500
	DefaultBatchPauseMS       = 1000
	DefaultSecondLevelPauseMS = 500
)

// ErrNotRepository is returned when no .paperref directory is found.
var ErrNotRepository = errors.New("not in a paperref repository (no .paperref directory found)")

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		NumNodes:           DefaultNumNodes,
		HubCeiling:         DefaultHubCeiling,
		BatchPauseMS:       DefaultBatchPauseMS,
		SecondLevelPauseMS: DefaultSecondLevelPauseMS,
	}
}

// RepoPath returns the path to the .paperref directory from a root path.
func RepoPath(root string) string {
	return filepath.Join(root, RepoDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RepoDir, ConfigFile)
}

// LibraryPath returns the path to library.jsonl from a root path.
func LibraryPath(root string) string {
	return filepath.Join(root, RepoDir, LibraryFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir)
}

// DBPath returns the path to library.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a paperref repository.
func IsRepository(root string) bool {
	info, err := os.Stat(RepoPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a paperref repository.
// Returns the repository root path or ErrNotRepository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// StartDir returns PAPERREF_ROOT if set, else the working directory.
func StartDir() (string, error) {
	if root := os.Getenv(RootEnv); root != "" {
		return ExpandPath(root), nil
	}
	return os.Getwd()
}

// Init creates the repository layout at root with a default config.
// It fails if a repository already exists there.
func Init(root string) error {
	if IsRepository(root) {
		return fmt.Errorf("repository already exists at %s", RepoPath(root))
	}
	if err := os.MkdirAll(CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", RepoDir, err)
	}
	if err := os.WriteFile(LibraryPath(root), nil, 0644); err != nil {
		return fmt.Errorf("creating library file: %w", err)
	}
	return Default().Save(root)
}

// Load reads configuration from the repository at the given root.
// Fields missing from the file keep their defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	if c.NumNodes < -1 {
		return fmt.Errorf("invalid num_nodes: %d (must be -1 or non-negative)", c.NumNodes)
	}
	if c.HubCeiling < -1 {
		return fmt.Errorf("invalid hub_ceiling: %d (must be -1 or non-negative)", c.HubCeiling)
	}
	if c.BatchPauseMS < 0 {
		return fmt.Errorf("invalid batch_pause_ms: %d", c.BatchPauseMS)
	}
	if c.SecondLevelPauseMS < 0 {
		return fmt.Errorf("invalid second_level_pause_ms: %d", c.SecondLevelPauseMS)
	}
	return nil
}

// BatchPause returns the pause between batch chunks.
func (c *Config) BatchPause() time.Duration {
	return time.Duration(c.BatchPauseMS) * time.Millisecond
}

// SecondLevelPause returns the pause before each second-level fetch.
func (c *Config) SecondLevelPause() time.Duration {
	return time.Duration(c.SecondLevelPauseMS) * time.Millisecond
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
