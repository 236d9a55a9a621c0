package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/bibtex"
	"github.com/speedse/speed/internal/clipboard"
)

var (
	getBibTeX bool
	getCopy   bool
)

func init() {
	getCmd.Flags().BoolVar(&getBibTeX, "bibtex-source", false, "Print the originally uploaded BibTeX text")
	getCmd.Flags().BoolVarP(&getCopy, "copy", "c", false, "Copy the article's BibTeX entry to the clipboard")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single article",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	store, db := mustOpenStore(repoRoot)
	defer db.Close()

	a, err := store.Get(args[0])
	if err != nil {
		exitForError("getting article", err)
	}

	if getCopy {
		if err := clipboard.Copy(bibtex.ToBibTeX(a)); err != nil {
			if errors.Is(err, clipboard.ErrClipboardUnavailable) {
				exitWithError(ExitError, "no clipboard command found (install pbcopy, wl-copy, xclip or xsel)")
			}
			exitWithError(ExitError, "copying to clipboard: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Copied %s to clipboard\n", bibtex.CiteKey(a))
	}

	switch {
	case getBibTeX:
		// Raw text, never JSON
		fmt.Println(a.BibTeXSource)
	case humanOutput:
		fmt.Print(formatArticleDetail(a))
	default:
		outputJSON(a)
	}
	return nil
}
