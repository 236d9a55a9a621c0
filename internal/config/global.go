package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/speed/config.yml.
type GlobalConfig struct {
	RepoPath    string `yaml:"repo_path,omitempty"`
	ModeratorID string `yaml:"moderator_id,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "speed"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/speed/config.yml.
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

	if cfg.RepoPath != "" {
		cfg.RepoPath = ExpandPath(cfg.RepoPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetModeratorID returns the default moderator identity from global config.
func GetModeratorID() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.ModeratorID
}

// GetRepoPath returns the configured default repository from global config.
func GetRepoPath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.RepoPath
}

// ErrRepoPathNotConfigured is returned when repo_path is not set in config.
var ErrRepoPathNotConfigured = errors.New("repo_path not configured")

// ErrRepoPathNotRepository is returned when repo_path has no .speed directory.
var ErrRepoPathNotRepository = errors.New("repo_path is not a speed repository")

// ValidateRepoPath returns the repo path from global config after validation.
func ValidateRepoPath() (string, error) {
	path := GetRepoPath()
	if path == "" {
		return "", ErrRepoPathNotConfigured
	}
	if !IsRepository(path) {
		return "", fmt.Errorf("%w: %s", ErrRepoPathNotRepository, path)
	}
	return path, nil
}

// ResolveRepository finds the repository for a command run from start:
// the enclosing .speed directory if any, otherwise the global repo_path.
func ResolveRepository(start string) (string, error) {
	if root, err := FindRepository(start); err == nil {
		return root, nil
	}
	root, err := ValidateRepoPath()
	if err != nil {
		if errors.Is(err, ErrRepoPathNotConfigured) {
			return "", errors.New(HelpfulConfigMessage())
		}
		return "", err
	}
	return root, nil
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No speed repository found.

Run 'speed init' in a directory, or create %s to set a default:
  mkdir -p %s
  echo 'repo_path: /path/to/your/repo' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
