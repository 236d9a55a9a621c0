package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/storage"
)

var (
	listStatus  string
	listAuthors []string
	listLimit   int
)

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only show articles with this status (pending, approved, rejected)")
	listCmd.Flags().StringArrayVarP(&listAuthors, "author", "a", nil, "Only show articles by this author (repeatable, all must match)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", DefaultListLimit, "Maximum number of articles")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles, newest first",
	Long: `List articles, newest first.

Examples:
  speed list
  speed list --status pending   # the moderation queue
  speed list -a Yu -a "Bloom, J" # articles by both authors
  speed list --limit 0          # everything`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// ListResult is the response for the list and search commands.
type ListResult struct {
	Articles []article.Article `json:"articles"`
	Count    int               `json:"count"`
}

func runList(cmd *cobra.Command, args []string) error {
	filter := storage.ListFilter{Authors: listAuthors, Limit: listLimit}
	if listStatus != "" {
		status, err := article.ParseStatus(listStatus)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		filter.Status = status
	}

	repoRoot := mustFindRepository()
	store, db := mustOpenStore(repoRoot)
	defer db.Close()

	articles, err := store.List(filter)
	if err != nil {
		exitWithError(ExitError, "listing articles: %v", err)
	}

	printArticles(articles)
	return nil
}

func printArticles(articles []article.Article) {
	if articles == nil {
		articles = []article.Article{}
	}
	if !humanOutput {
		outputJSON(ListResult{Articles: articles, Count: len(articles)})
		return
	}

	if len(articles) == 0 {
		fmt.Println("No articles")
		return
	}
	for _, a := range articles {
		fmt.Println(formatArticleLine(a))
	}
	fmt.Printf("\n%d article(s)\n", len(articles))
}
