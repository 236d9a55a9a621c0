package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  speed config                              # Show all config
  speed config serve-addr                   # Get specific value
  speed config serve-addr 0.0.0.0:8080      # Set value

Keys:
  default-submitter    Recorded when a submission names no submitter
  serve-addr           Listen address for 'speed serve'
  max-upload-bytes     Request body limit for uploads
  rate-limit           Write requests per second accepted by 'speed serve'
  rate-burst           Burst size for the write limiter
  placeholder-title    Title used when a BibTeX file has none
  placeholder-authors  Authors used when a BibTeX file has none
  placeholder-journal  Journal used when a BibTeX file has none`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// configKey reads and writes one config value as a string.
type configKey struct {
	get func(c *config.Config) string
	set func(c *config.Config, v string) error
}

var configKeys = map[string]configKey{
	"default-submitter": {
		get: func(c *config.Config) string { return c.DefaultSubmitter },
		set: func(c *config.Config, v string) error { c.DefaultSubmitter = v; return nil },
	},
	"serve-addr": {
		get: func(c *config.Config) string { return c.ServeAddr },
		set: func(c *config.Config, v string) error { c.ServeAddr = v; return nil },
	},
	"max-upload-bytes": {
		get: func(c *config.Config) string { return strconv.FormatInt(c.MaxUploadBytes, 10) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				return fmt.Errorf("max-upload-bytes must be a positive integer")
			}
			c.MaxUploadBytes = n
			return nil
		},
	},
	"rate-limit": {
		get: func(c *config.Config) string { return strconv.FormatFloat(c.RateLimit, 'g', -1, 64) },
		set: func(c *config.Config, v string) error {
			r, err := strconv.ParseFloat(v, 64)
			if err != nil || r <= 0 {
				return fmt.Errorf("rate-limit must be a positive number")
			}
			c.RateLimit = r
			return nil
		},
	},
	"rate-burst": {
		get: func(c *config.Config) string { return strconv.Itoa(c.RateBurst) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("rate-burst must be a positive integer")
			}
			c.RateBurst = n
			return nil
		},
	},
	"placeholder-title": {
		get: func(c *config.Config) string { return c.IngestPlaceholders().Title },
		set: func(c *config.Config, v string) error {
			p := c.IngestPlaceholders()
			p.Title = v
			c.Placeholders = &p
			return nil
		},
	},
	"placeholder-authors": {
		get: func(c *config.Config) string { return c.IngestPlaceholders().Authors },
		set: func(c *config.Config, v string) error {
			p := c.IngestPlaceholders()
			p.Authors = v
			c.Placeholders = &p
			return nil
		},
	},
	"placeholder-journal": {
		get: func(c *config.Config) string { return c.IngestPlaceholders().Journal },
		set: func(c *config.Config, v string) error {
			p := c.IngestPlaceholders()
			p.Journal = v
			c.Placeholders = &p
			return nil
		},
	},
}

func runConfig(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			for _, key := range sortedConfigKeys() {
				fmt.Printf("%-20s %s\n", key+":", configKeys[key].get(cfg))
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])
	entry, ok := configKeys[key]
	if !ok {
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	// One arg: get specific value
	if len(args) == 1 {
		if humanOutput {
			fmt.Println(entry.get(cfg))
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): entry.get(cfg)})
		}
		return nil
	}

	// Two args: set value
	value := strings.TrimSpace(args[1])
	if value == "" {
		exitWithError(ExitError, "empty value for %s", key)
	}
	if err := entry.set(cfg, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// normalizeKey converts key formats (serve-addr, serve_addr, Serve-Addr) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}

func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
