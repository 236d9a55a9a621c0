// Package pdf pulls bibliographic hints (DOI, title) out of an attached PDF.
package pdf

import (
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/speedse/speed/internal/article"
)

// DOI pattern: 10.XXXX/... where XXXX is 4-9 digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// hintPages is how many leading pages are searched. DOIs and titles are
// almost always on the first page.
const hintPages = 3

// Hints is the secondary evidence found in a PDF.
type Hints struct {
	DOI   string `json:"doi,omitempty"`
	Title string `json:"title,omitempty"`
}

// Empty reports whether nothing was found.
func (h Hints) Empty() bool {
	return h.DOI == "" && h.Title == ""
}

// Input converts hints into a partial article input for ingest.ApplyHints.
func (h Hints) Input() article.Input {
	return article.Input{DOI: h.DOI, Title: h.Title}
}

// ExtractHints opens a PDF file and extracts its DOI and title.
func ExtractHints(filePath string) (Hints, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return Hints{}, err
	}
	defer f.Close()

	return hintsFrom(r), nil
}

// ExtractHintsReader extracts hints from an in-memory PDF, e.g. an upload.
func ExtractHintsReader(r io.ReaderAt, size int64) (Hints, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return Hints{}, err
	}
	return hintsFrom(pdfReader), nil
}

// ExtractDOI extracts a DOI from a PDF file.
// Returns "" without error when no DOI is present.
func ExtractDOI(filePath string) (string, error) {
	h, err := ExtractHints(filePath)
	return h.DOI, err
}

// ExtractTitle attempts to extract the title from a PDF.
// This is a best-effort heuristic: the first substantial line of page one.
func ExtractTitle(filePath string) (string, error) {
	h, err := ExtractHints(filePath)
	return h.Title, err
}

func hintsFrom(r *pdf.Reader) Hints {
	maxPages := hintPages
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	var h Hints
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if i == 1 {
			h.Title = FindTitle(text)
		}
		if h.DOI == "" {
			h.DOI = FindDOI(text)
		}
		if h.DOI != "" && h.Title != "" {
			break
		}
	}
	return h
}

// FindDOI returns the first plausible DOI in text, or "".
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		// Remove trailing punctuation
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// FindTitle returns the first line of text that looks like a title.
func FindTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		// Skip short lines, running headers, etc.
		if len(line) > 20 && !isHeaderLine(line) && FindDOI(line) == "" {
			return line
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"),
		strings.Contains(lower, "copyright"),
		strings.Contains(lower, "proceedings"),
		strings.Contains(lower, "volume") && strings.Contains(lower, "issue"),
		strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
