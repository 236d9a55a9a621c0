// Package main provides the speed CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/config"
	"github.com/speedse/speed/internal/ingest"
	"github.com/speedse/speed/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "speed",
	Short: "Submit and moderate software engineering evidence",
	Long: `speed collects empirical software engineering articles for review.

Articles are submitted from a BibTeX file or entered by hand, wait in a
moderation queue as pending, and are then approved or rejected.

Data is stored in git-versionable JSONL with ephemeral SQLite for queries.
All commands output JSON by default; use --human for readable text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustFindRepository finds the repository for the current directory, falling
// back to the global repo_path. Exits on error.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	repoRoot, err := config.ResolveRepository(cwd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustOpenStore opens the article store, rebuilding the query cache when it
// is behind the JSONL file. The caller closes the returned DB.
func mustOpenStore(repoRoot string) (*storage.Store, *storage.DB) {
	db := mustOpenDatabase(repoRoot)
	store := storage.NewStore(config.ArticlesPath(repoRoot), db)

	if stale, err := cacheIsStale(repoRoot, db); err != nil {
		exitWithError(ExitDataError, "checking query cache: %v", err)
	} else if stale {
		if _, err := store.Rebuild(); err != nil {
			exitWithError(ExitDataError, "rebuilding query cache: %v", err)
		}
	}
	return store, db
}

// cacheIsStale reports whether the SQLite cache holds a different number of
// articles than the JSONL file, e.g. after a git pull.
func cacheIsStale(repoRoot string, db *storage.DB) (bool, error) {
	articles, err := storage.ReadAll(config.ArticlesPath(repoRoot))
	if err != nil {
		return false, err
	}
	count, err := db.Count()
	if err != nil {
		return false, err
	}
	return count != len(articles), nil
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newIngestor builds an ingestor from repository configuration.
func newIngestor(cfg *config.Config) *ingest.Ingestor {
	return ingest.New(
		ingest.WithPlaceholders(cfg.IngestPlaceholders()),
		ingest.WithDefaultSubmitter(cfg.DefaultSubmitter),
	)
}
