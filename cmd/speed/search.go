package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", DefaultListLimit, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over titles, authors and journals",
	Long: `Full-text search over titles, authors and journals.

Examples:
  speed search "test driven"
  speed search Smith --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchLimit <= 0 {
		exitWithError(ExitError, "--limit must be positive")
	}

	repoRoot := mustFindRepository()
	store, db := mustOpenStore(repoRoot)
	defer db.Close()

	articles, err := store.Search(strings.Join(args, " "), searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	printArticles(articles)
	return nil
}
