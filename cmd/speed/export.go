package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/bibtex"
	"github.com/speedse/speed/internal/export"
	"github.com/speedse/speed/internal/storage"
)

var (
	exportStatus string
	exportFormat string
	exportAppend string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVar(&exportStatus, "status", string(article.StatusApproved), `Export articles with this status, or "all"`)
	exportCmd.Flags().StringVar(&exportFormat, "format", "bibtex", "Output format: bibtex or xlsx")
	exportCmd.Flags().StringVar(&exportAppend, "append", "", "Append to a .bib file, skipping entries already present")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file (required for xlsx)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export articles to BibTeX or a spreadsheet",
	Long: `Export articles to BibTeX or a spreadsheet.

By default only approved articles are exported.

Examples:
  speed export > evidence.bib
  speed export --append ~/papers/evidence.bib
  speed export --status all --format xlsx -o review.xlsx`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// ExportResult is the response for export --append and xlsx exports.
type ExportResult struct {
	Path     string `json:"path"`
	Exported int    `json:"exported"`
	Skipped  int    `json:"skipped"`
}

func runExport(cmd *cobra.Command, args []string) error {
	filter := storage.ListFilter{}
	if exportStatus != "all" {
		status, err := article.ParseStatus(exportStatus)
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

	switch exportFormat {
	case "bibtex":
		if exportAppend != "" {
			result, err := appendBibTeX(exportAppend, articles)
			if err != nil {
				exitWithError(ExitError, "appending to %s: %v", exportAppend, err)
			}
			printExportResult(result)
			return nil
		}
		content := bibtex.ToBibTeXList(articles)
		if exportOutput == "" {
			// BibTeX is always text output, never JSON
			fmt.Print(content)
			return nil
		}
		if err := os.WriteFile(exportOutput, []byte(content), 0644); err != nil {
			exitWithError(ExitError, "writing %s: %v", exportOutput, err)
		}
		printExportResult(ExportResult{Path: exportOutput, Exported: len(articles)})

	case "xlsx":
		if exportOutput == "" {
			exitWithError(ExitError, "--output is required for xlsx")
		}
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", exportOutput, err)
		}
		if err := export.WriteXLSX(f, articles); err != nil {
			f.Close()
			exitWithError(ExitError, "writing %s: %v", exportOutput, err)
		}
		if err := f.Close(); err != nil {
			exitWithError(ExitError, "writing %s: %v", exportOutput, err)
		}
		printExportResult(ExportResult{Path: exportOutput, Exported: len(articles)})

	default:
		exitWithError(ExitError, "unknown format %q (valid: bibtex, xlsx)", exportFormat)
	}
	return nil
}

// appendBibTeX appends the articles missing from the .bib file at path.
// An article is present when its DOI or citation key already appears.
func appendBibTeX(path string, articles []article.Article) (ExportResult, error) {
	idx, err := bibtex.ParseIndexFile(path)
	if err != nil {
		return ExportResult{}, err
	}

	fresh := selectNewEntries(idx, articles)
	result := ExportResult{Path: path, Exported: len(fresh), Skipped: len(articles) - len(fresh)}
	if len(fresh) == 0 {
		return result, nil
	}
	return result, bibtex.AppendToFile(path, bibtex.ToBibTeXList(fresh))
}

// selectNewEntries filters out articles already in idx, recording each kept
// article so duplicates within the batch are also dropped.
func selectNewEntries(idx *bibtex.Index, articles []article.Article) []article.Article {
	var fresh []article.Article
	for _, a := range articles {
		key := bibtex.CiteKey(a)
		if idx.HasEntry(key, a.DOI) {
			continue
		}
		idx.Add(key, a.DOI)
		fresh = append(fresh, a)
	}
	return fresh
}

func printExportResult(r ExportResult) {
	if humanOutput {
		fmt.Printf("Exported %d article(s) to %s", r.Exported, r.Path)
		if r.Skipped > 0 {
			fmt.Printf(" (%d already present)", r.Skipped)
		}
		fmt.Println()
	} else {
		outputJSON(r)
	}
}
