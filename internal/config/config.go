// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/speedse/speed/internal/ingest"
)

// Config represents repository configuration stored in .speed/config.json.
type Config struct {
	DefaultSubmitter string               `json:"default_submitter,omitempty"` // Recorded when a submission names no submitter
	ServeAddr        string               `json:"serve_addr,omitempty"`        // Listen address for `speed serve`
	MaxUploadBytes   int64                `json:"max_upload_bytes,omitempty"`  // Request body limit for uploads
	RateLimit        float64              `json:"rate_limit,omitempty"`        // Write requests per second
	RateBurst        int                  `json:"rate_burst,omitempty"`        // Burst size for the write limiter
	Placeholders     *ingest.Placeholders `json:"placeholders,omitempty"`      // Overrides for BibTeX placeholders
}

const (
	SpeedDir     = ".speed"
	ConfigFile   = "config.json"
	ArticlesFile = "articles.jsonl"
	CacheDir     = "cache"
	DBFile       = "articles.db"
)

// Defaults applied when config.json leaves a value unset.
const (
	DefaultServeAddr      = "127.0.0.1:8080"
	DefaultMaxUploadBytes = 5 << 20
	DefaultRateLimit      = 5.0
	DefaultRateBurst      = 10
)

// Environment variables read by ApplyEnv.
const (
	EnvAddr           = "SPEED_ADDR"
	EnvMaxUploadBytes = "SPEED_MAX_UPLOAD_BYTES"
	EnvRateLimit      = "SPEED_RATE_LIMIT"
)

// Default returns a configuration with every value set.
func Default() *Config {
	p := ingest.DefaultPlaceholders
	return &Config{
		DefaultSubmitter: ingest.DefaultSubmitter,
		ServeAddr:        DefaultServeAddr,
		MaxUploadBytes:   DefaultMaxUploadBytes,
		RateLimit:        DefaultRateLimit,
		RateBurst:        DefaultRateBurst,
		Placeholders:     &p,
	}
}

// SpeedPath returns the path to the .speed directory from a root path.
func SpeedPath(root string) string {
	return filepath.Join(root, SpeedDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, SpeedDir, ConfigFile)
}

// ArticlesPath returns the path to articles.jsonl from a root path.
func ArticlesPath(root string) string {
	return filepath.Join(root, SpeedDir, ArticlesFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, SpeedDir, CacheDir)
}

// DBPath returns the path to articles.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, SpeedDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a speed repository.
func IsRepository(root string) bool {
	info, err := os.Stat(SpeedPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a speed repository.
// Returns the repository root path or an error if not found.
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
			return "", fmt.Errorf("not in a speed repository (no .speed directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
// Values missing from the file are filled from Default.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
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

func (c *Config) fillDefaults() {
	d := Default()
	if c.DefaultSubmitter == "" {
		c.DefaultSubmitter = d.DefaultSubmitter
	}
	if c.ServeAddr == "" {
		c.ServeAddr = d.ServeAddr
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.RateLimit == 0 {
		c.RateLimit = d.RateLimit
	}
	if c.RateBurst == 0 {
		c.RateBurst = d.RateBurst
	}
	if c.Placeholders == nil {
		c.Placeholders = d.Placeholders
	} else {
		p := c.Placeholders.WithDefaults()
		c.Placeholders = &p
	}
}

// Validate checks numeric limits.
func (c *Config) Validate() error {
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("invalid max_upload_bytes: %d (must be positive)", c.MaxUploadBytes)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit: %g (must be positive)", c.RateLimit)
	}
	if c.RateBurst < 0 {
		return fmt.Errorf("invalid rate_burst: %d (must be positive)", c.RateBurst)
	}
	return nil
}

// IngestPlaceholders returns the placeholder table to use, never empty.
func (c *Config) IngestPlaceholders() ingest.Placeholders {
	if c.Placeholders == nil {
		return ingest.DefaultPlaceholders
	}
	return c.Placeholders.WithDefaults()
}

// ApplyEnv overrides server settings from SPEED_* environment variables.
// Unset variables leave the config untouched.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.ServeAddr = v
	}
	if v := os.Getenv(EnvMaxUploadBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s: %q", EnvMaxUploadBytes, v)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("invalid %s: %q", EnvRateLimit, v)
		}
		c.RateLimit = r
	}
	return nil
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
