package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/pdf"
)

var (
	submitBib       string
	submitPDF       string
	submitDryRun    bool
	submitTitle     string
	submitAuthors   string
	submitJournal   string
	submitYear      int
	submitVolume    string
	submitNumber    string
	submitPages     string
	submitDOI       string
	submitURL       string
	submitAbstract  string
	submitSubmitter string
)

func init() {
	submitCmd.Flags().StringVar(&submitBib, "bib", "", "BibTeX file to submit (first entry is used)")
	submitCmd.Flags().StringVar(&submitPDF, "pdf", "", "PDF of the article, searched for a DOI and title")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Show the article that would be created without storing it")
	submitCmd.Flags().StringVar(&submitTitle, "title", "", "Article title")
	submitCmd.Flags().StringVar(&submitAuthors, "authors", "", "Authors, comma separated")
	submitCmd.Flags().StringVar(&submitJournal, "journal", "", "Journal or proceedings title")
	submitCmd.Flags().IntVar(&submitYear, "year", 0, "Publication year")
	submitCmd.Flags().StringVar(&submitVolume, "volume", "", "Volume")
	submitCmd.Flags().StringVar(&submitNumber, "number", "", "Issue number")
	submitCmd.Flags().StringVar(&submitPages, "pages", "", "Page range")
	submitCmd.Flags().StringVar(&submitDOI, "doi", "", "DOI")
	submitCmd.Flags().StringVar(&submitURL, "url", "", "URL")
	submitCmd.Flags().StringVar(&submitAbstract, "abstract", "", "Abstract")
	submitCmd.Flags().StringVar(&submitSubmitter, "submitter", "", "Who is submitting (default from config)")
	rootCmd.AddCommand(submitCmd)
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an article for moderation",
	Long: `Submit an article for moderation.

With --bib, the first entry of the BibTeX file is used. Unreadable files are
still accepted with placeholder values, and any field flags override what
was parsed. Without --bib, --title, --authors, --journal and --year are
required.

Examples:
  speed submit --bib paper.bib
  speed submit --bib paper.bib --pdf paper.pdf --journal "IEEE Software"
  speed submit --title "Mutation Testing" --authors "Jia, Y., Harman, M." \
      --journal TSE --year 2011`,
	RunE: runSubmit,
}

// SubmitResult is the response for the submit command.
type SubmitResult struct {
	Status       string          `json:"status"` // created or dry_run
	Article      article.Article `json:"article"`
	Placeholders []string        `json:"placeholders,omitempty"`
	PDFHints     *pdf.Hints      `json:"pdf_hints,omitempty"`
}

func runSubmit(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	in := newIngestor(cfg)

	src, overrides, err := submissionFromFlags()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	a, err := in.Ingest(src, overrides)
	if err != nil {
		exitForError("invalid submission", err)
	}

	result := SubmitResult{Status: "created"}
	if submitPDF != "" {
		hints, err := pdf.ExtractHints(submitPDF)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: reading %s: %v\n", submitPDF, err)
		} else if !hints.Empty() {
			in.ApplyHints(&a, hints.Input())
			result.PDFHints = &hints
		}
	}
	if src.Kind() == article.SourceBibTeX {
		result.Placeholders = in.Placeholders().PlaceholderFields(a)
	}

	if submitDryRun {
		result.Status = "dry_run"
	} else {
		store, db := mustOpenStore(repoRoot)
		defer db.Close()

		if a, err = store.Create(a); err != nil {
			exitWithError(ExitError, "storing article: %v", err)
		}
	}
	result.Article = a

	if humanOutput {
		printSubmitHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

// submissionFromFlags builds the ingestion source and overrides from flags.
func submissionFromFlags() (article.Source, article.Input, error) {
	fields := article.Input{
		Title:       submitTitle,
		Authors:     submitAuthors,
		Journal:     submitJournal,
		Year:        submitYear,
		Volume:      submitVolume,
		Number:      submitNumber,
		Pages:       submitPages,
		DOI:         submitDOI,
		URL:         submitURL,
		Abstract:    submitAbstract,
		SubmittedBy: submitSubmitter,
	}

	if submitBib == "" {
		return article.ManualSource{Fields: fields}, article.Input{}, nil
	}

	text, err := readInput(submitBib)
	if err != nil {
		return nil, article.Input{}, fmt.Errorf("reading %s: %w", submitBib, err)
	}
	filename := filepath.Base(submitBib)
	if submitBib == "-" {
		filename = ""
	}
	return article.BibTeXSource{RawText: text, Filename: filename}, fields, nil
}

func printSubmitHuman(r SubmitResult) {
	if r.Status == "dry_run" {
		fmt.Println("Dry run, nothing stored:")
	} else {
		fmt.Println("Submitted for moderation:")
	}
	fmt.Print(formatArticleDetail(r.Article))
	if len(r.Placeholders) > 0 {
		fmt.Printf("\nwarning: no value found for %v; placeholders were used\n", r.Placeholders)
	}
}
