package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from source data",
	Long: `Rebuild the SQLite query database from the JSONL source file.

Use this after pulling changes from git or if the database becomes corrupted.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status   string         `json:"status"`
	Articles int            `json:"articles"`
	ByStatus map[string]int `json:"by_status"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	count, err := db.RebuildFromJSONL(config.ArticlesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding articles database: %v", err)
	}

	counts, err := db.CountByStatus()
	if err != nil {
		exitWithError(ExitError, "counting articles: %v", err)
	}
	byStatus := make(map[string]int, len(counts))
	for s, n := range counts {
		byStatus[string(s)] = n
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d articles\n", count)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Articles: count, ByStatus: byStatus})
	}
	return nil
}
