package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/storage"
)

// Constants for output formatting.
const (
	DefaultListLimit = 50 // Default limit for search/list commands

	ListTitleMaxLen   = 50 // Used in list command output
	DetailTitleMaxLen = 70 // Used in get command detail view
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitForError maps a domain error to an exit code and exits.
func exitForError(context string, err error) {
	var verr *article.ValidationError
	if errors.As(err, &verr) {
		if humanOutput {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", context, err)
		} else {
			outputJSON(ErrorResponse{
				Error:   fmt.Sprintf("%s: %v", context, err),
				Missing: verr.Missing,
				Invalid: verr.Invalid,
			})
		}
		os.Exit(ExitValidation)
	}
	exitWithError(exitCodeFor(err), "%s: %v", context, err)
}

func exitCodeFor(err error) int {
	switch {
	case article.IsValidationError(err):
		return ExitValidation
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, article.ErrInvalidTransition):
		return ExitDataError
	default:
		return ExitError
	}
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// truncateString shortens s to maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// formatArticleLine renders an article as a single list line.
func formatArticleLine(a article.Article) string {
	return fmt.Sprintf("%-36s  %-8s  %4d  %s", a.ID, a.Status, a.Year, truncateString(a.Title, ListTitleMaxLen))
}

// formatArticleDetail renders the full record of an article.
func formatArticleDetail(a article.Article) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n", a.ID))
	sb.WriteString(fmt.Sprintf("  Title:   %s\n", truncateString(a.Title, DetailTitleMaxLen)))
	sb.WriteString(fmt.Sprintf("  Authors: %s\n", a.Authors))
	sb.WriteString(fmt.Sprintf("  Journal: %s\n", a.Journal))
	sb.WriteString(fmt.Sprintf("  Year:    %d\n", a.Year))
	writeDetail(&sb, "Volume", a.Volume)
	writeDetail(&sb, "Number", a.Number)
	writeDetail(&sb, "Pages", a.Pages)
	writeDetail(&sb, "DOI", a.DOI)
	writeDetail(&sb, "URL", a.URL)
	sb.WriteString(fmt.Sprintf("  Status:  %s\n", a.Status))

	source := string(a.Source.Kind)
	if a.Source.Filename != "" {
		source += " (" + a.Source.Filename + ")"
	}
	sb.WriteString(fmt.Sprintf("  Source:  %s\n", source))
	writeDetail(&sb, "By", a.SubmittedBy)
	if !a.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("  Created: %s\n", a.CreatedAt.Format(time.RFC3339)))
	}
	if a.ModeratedAt != nil {
		sb.WriteString(fmt.Sprintf("  Moderated: %s by %s\n", a.ModeratedAt.Format(time.RFC3339), a.ModeratedBy))
	}
	writeDetail(&sb, "Notes", a.ModerationNotes)
	return sb.String()
}

func writeDetail(sb *strings.Builder, label, value string) {
	if value != "" {
		sb.WriteString(fmt.Sprintf("  %-8s %s\n", label+":", value))
	}
}
