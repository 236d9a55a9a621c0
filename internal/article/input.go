package article

import (
	"errors"
	"fmt"
	"strings"
)

// Input is a partially filled article record, as entered by a submitter or
// carried alongside an upload. Zero values mean "not supplied".
type Input struct {
	Title       string `json:"title,omitempty"`
	Authors     string `json:"authors,omitempty"`
	Journal     string `json:"journal,omitempty"`
	Year        int    `json:"year,omitempty"`
	Volume      string `json:"volume,omitempty"`
	Number      string `json:"number,omitempty"`
	Pages       string `json:"pages,omitempty"`
	DOI         string `json:"doi,omitempty"`
	URL         string `json:"url,omitempty"`
	Abstract    string `json:"abstract,omitempty"`
	SubmittedBy string `json:"submitted_by,omitempty"`
}

// Merge returns in with every supplied field of over applied on top.
// Whitespace-only strings count as not supplied.
func (in Input) Merge(over Input) Input {
	out := in
	pick(&out.Title, over.Title)
	pick(&out.Authors, over.Authors)
	pick(&out.Journal, over.Journal)
	pick(&out.Volume, over.Volume)
	pick(&out.Number, over.Number)
	pick(&out.Pages, over.Pages)
	pick(&out.DOI, over.DOI)
	pick(&out.URL, over.URL)
	pick(&out.Abstract, over.Abstract)
	pick(&out.SubmittedBy, over.SubmittedBy)
	if over.Year > 0 {
		out.Year = over.Year
	}
	return out
}

// Trimmed returns a copy of in with surrounding whitespace removed.
func (in Input) Trimmed() Input {
	out := in
	for _, f := range []*string{
		&out.Title, &out.Authors, &out.Journal, &out.Volume, &out.Number,
		&out.Pages, &out.DOI, &out.URL, &out.Abstract, &out.SubmittedBy,
	} {
		*f = strings.TrimSpace(*f)
	}
	return out
}

func pick(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Source is what an article is ingested from: either a BibTeXSource or a
// ManualSource.
type Source interface {
	Kind() SourceKind
	isSource()
}

// BibTeXSource is the decoded text of an uploaded .bib file.
type BibTeXSource struct {
	RawText  string
	Filename string
}

// ManualSource is a record typed into the submission form.
type ManualSource struct {
	Fields Input
}

func (BibTeXSource) Kind() SourceKind { return SourceBibTeX }
func (ManualSource) Kind() SourceKind { return SourceManual }

func (BibTeXSource) isSource() {}
func (ManualSource) isSource() {}

// ValidationError reports which fields of a submission were rejected.
type ValidationError struct {
	Missing []string `json:"missing,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required field(s): %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, strings.Join(e.Invalid, "; "))
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
