package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/bibtex"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file.bib>",
	Short: "Preview how a BibTeX file will be read",
	Long: `Parse the first entry of a BibTeX file and print the extracted fields
without submitting anything. Use "-" to read from stdin.

Exits with code 3 when no entry can be found.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

// ParseResult is the response for the parse command.
type ParseResult struct {
	EntryFound bool           `json:"entry_found"`
	Fields     *bibtex.Fields `json:"fields"`
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", args[0], err)
	}

	fields := bibtex.Parse(text)

	if humanOutput {
		if fields == nil {
			fmt.Fprintln(os.Stderr, "no BibTeX entry found")
		} else {
			fmt.Printf("Title:   %s\n", fields.Title)
			fmt.Printf("Authors: %s\n", fields.Authors)
			fmt.Printf("Journal: %s\n", fields.Journal)
			fmt.Printf("Year:    %d\n", fields.Year)
			fmt.Printf("Volume:  %s\n", fields.Volume)
			fmt.Printf("Number:  %s\n", fields.Number)
			fmt.Printf("Pages:   %s\n", fields.Pages)
			fmt.Printf("DOI:     %s\n", fields.DOI)
		}
	} else {
		outputJSON(ParseResult{EntryFound: fields != nil, Fields: fields})
	}

	if fields == nil {
		os.Exit(ExitDataError)
	}
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
