package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/paperref/config.yml.
type GlobalConfig struct {
	S2APIKey       string `yaml:"s2_api_key,omitempty"`
	S2APIURL       string `yaml:"s2_api_url,omitempty"`
	OllamaURL      string `yaml:"ollama_url,omitempty"`
	EmbeddingModel string `yaml:"embedding_model,omitempty"`
	ListenAddr     string `yaml:"listen_addr,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "paperref"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// DefaultListenAddr is used by serve when listen_addr is unset.
	DefaultListenAddr = ":8080"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/paperref/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetS2APIKey returns the Semantic Scholar API key.
// The S2_API_KEY environment variable wins over the config file.
func GetS2APIKey() string {
	if key := os.Getenv("S2_API_KEY"); key != "" {
		return key
	}
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.S2APIKey
}

// GetS2APIURL returns the configured Semantic Scholar graph API URL, or "".
func GetS2APIURL() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.S2APIURL
}

// GetOllamaURL returns the configured Ollama URL, or "".
func GetOllamaURL() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.OllamaURL
}

// GetEmbeddingModel returns the configured embedding model, or "".
func GetEmbeddingModel() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.EmbeddingModel
}

// GetListenAddr returns the HTTP listen address, defaulting to DefaultListenAddr.
func GetListenAddr() string {
	cfg, err := LoadGlobalConfig()
	if err != nil || cfg.ListenAddr == "" {
		return DefaultListenAddr
	}
	return cfg.ListenAddr
}

// HelpfulConfigMessage returns a hint for setting up the global config.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`Tip: Create %s to set an API key:
  mkdir -p %s
  echo 's2_api_key: YOUR_KEY' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
