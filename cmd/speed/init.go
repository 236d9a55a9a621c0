package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new speed repository",
	Long: `Initialize a new speed repository in the current directory.

Creates:
  .speed/
  ├── articles.jsonl  # Empty file
  ├── config.json     # Default config
  └── cache/          # Empty directory (gitignored)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a speed repository")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating .speed directory: %v", err)
	}

	f, err := os.Create(config.ArticlesPath(root))
	if err != nil {
		exitWithError(ExitError, "creating articles.jsonl: %v", err)
	}
	f.Close()

	if err := config.Default().Save(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	gitignore := filepath.Join(config.SpeedPath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		exitWithError(ExitError, "creating .gitignore: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized speed repository in %s\n", config.SpeedPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.SpeedPath(root)})
	}
	return nil
}
