// Package ingest turns uploaded BibTeX text or manually entered fields into
// articles ready for storage.
package ingest

import (
	"fmt"
	"time"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/bibtex"
)

// Ingestor builds pending articles from submissions. It is safe for
// concurrent use; it holds no mutable state.
type Ingestor struct {
	now              func() time.Time
	placeholders     Placeholders
	defaultSubmitter string
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithClock sets the clock used for fallback and validation years.
func WithClock(now func() time.Time) Option {
	return func(in *Ingestor) {
		in.now = now
	}
}

// WithPlaceholders overrides the placeholder table. Empty entries keep
// their default.
func WithPlaceholders(p Placeholders) Option {
	return func(in *Ingestor) {
		in.placeholders = p.WithDefaults()
	}
}

// WithDefaultSubmitter sets the submitter recorded when none is given.
func WithDefaultSubmitter(name string) Option {
	return func(in *Ingestor) {
		if name != "" {
			in.defaultSubmitter = name
		}
	}
}

// New creates an Ingestor.
func New(opts ...Option) *Ingestor {
	in := &Ingestor{
		now:              time.Now,
		placeholders:     DefaultPlaceholders,
		defaultSubmitter: DefaultSubmitter,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Placeholders returns the placeholder table in use.
func (in *Ingestor) Placeholders() Placeholders {
	return in.placeholders
}

// Parser returns a BibTeX parser sharing the ingestor's clock.
func (in *Ingestor) Parser() bibtex.Parser {
	return bibtex.Parser{Now: in.now}
}

// Ingest builds a pending article from src with overrides applied on top.
//
// A BibTeX source never fails: unparseable text yields placeholder values
// and the raw text is kept for audit. A manual source fails with a
// *article.ValidationError when title, authors, journal or year is missing.
// The returned article has no ID or timestamps; storage assigns those.
func (in *Ingestor) Ingest(src article.Source, overrides article.Input) (article.Article, error) {
	switch s := src.(type) {
	case article.BibTeXSource:
		return in.ingestBibTeX(s, overrides), nil
	case article.ManualSource:
		return in.ingestManual(s, overrides)
	case *article.BibTeXSource:
		return in.ingestBibTeX(*s, overrides), nil
	case *article.ManualSource:
		return in.ingestManual(*s, overrides)
	default:
		return article.Article{}, fmt.Errorf("unsupported source type %T", src)
	}
}

func (in *Ingestor) ingestBibTeX(src article.BibTeXSource, overrides article.Input) article.Article {
	parsed, _ := in.ParseOrBlank(src.RawText)

	merged := fromFields(parsed).Merge(overrides)

	a := in.build(merged, article.Provenance{Kind: article.SourceBibTeX, Filename: src.Filename})
	a.Title = fill(a.Title, in.placeholders.Title)
	a.Authors = fill(a.Authors, in.placeholders.Authors)
	a.Journal = fill(a.Journal, in.placeholders.Journal)
	if a.Year <= 0 {
		a.Year = in.now().Year()
	}
	a.BibTeXSource = src.RawText
	return a
}

// ParseOrBlank parses text, substituting the all-default field set when no
// entry can be found. The second result reports whether parsing succeeded.
func (in *Ingestor) ParseOrBlank(text string) (bibtex.Fields, bool) {
	if f := in.Parser().Parse(text); f != nil {
		return *f, true
	}
	return bibtex.Blank(in.now()), false
}

func (in *Ingestor) ingestManual(src article.ManualSource, overrides article.Input) (article.Article, error) {
	merged := src.Fields.Trimmed().Merge(overrides)

	if err := in.validateManual(merged); err != nil {
		return article.Article{}, err
	}

	return in.build(merged, article.Provenance{Kind: article.SourceManual}), nil
}

// validateManual enforces the required-field contract of manual submissions.
func (in *Ingestor) validateManual(fields article.Input) error {
	verr := &article.ValidationError{}
	if fields.Title == "" {
		verr.Missing = append(verr.Missing, "title")
	}
	if fields.Authors == "" {
		verr.Missing = append(verr.Missing, "authors")
	}
	if fields.Journal == "" {
		verr.Missing = append(verr.Missing, "journal")
	}
	if fields.Year == 0 {
		verr.Missing = append(verr.Missing, "year")
	} else if maxYear := in.now().Year() + 1; fields.Year < MinYear || fields.Year > maxYear {
		verr.Invalid = append(verr.Invalid, fmt.Sprintf("year must be between %d and %d", MinYear, maxYear))
	}

	if len(verr.Missing) == 0 && len(verr.Invalid) == 0 {
		return nil
	}
	return verr
}

// build stamps the system-assigned fields onto merged input.
func (in *Ingestor) build(fields article.Input, source article.Provenance) article.Article {
	return article.Article{
		Title:       fields.Title,
		Authors:     fields.Authors,
		Journal:     fields.Journal,
		Year:        fields.Year,
		Volume:      fields.Volume,
		Number:      fields.Number,
		Pages:       fields.Pages,
		DOI:         fields.DOI,
		URL:         fields.URL,
		Abstract:    fields.Abstract,
		Status:      article.StatusPending,
		Source:      source,
		SubmittedBy: fill(fields.SubmittedBy, in.defaultSubmitter),
	}
}

func fromFields(f bibtex.Fields) article.Input {
	return article.Input{
		Title:   f.Title,
		Authors: f.Authors,
		Journal: f.Journal,
		Year:    f.Year,
		Volume:  f.Volume,
		Number:  f.Number,
		Pages:   f.Pages,
		DOI:     f.DOI,
	}
}

// ApplyHints fills gaps in a from secondary evidence such as an attached PDF.
// Empty optional fields and placeholder-valued descriptive fields are
// replaced; everything else, including status and provenance, is left alone.
func (in *Ingestor) ApplyHints(a *article.Article, hints article.Input) {
	hints = hints.Trimmed()

	replace := func(dst *string, hint, placeholder string) {
		if hint != "" && (*dst == "" || *dst == placeholder) {
			*dst = hint
		}
	}
	replace(&a.Title, hints.Title, in.placeholders.Title)
	replace(&a.Authors, hints.Authors, in.placeholders.Authors)
	replace(&a.Journal, hints.Journal, in.placeholders.Journal)
	replace(&a.Volume, hints.Volume, "")
	replace(&a.Number, hints.Number, "")
	replace(&a.Pages, hints.Pages, "")
	replace(&a.DOI, hints.DOI, "")
	replace(&a.URL, hints.URL, "")
	replace(&a.Abstract, hints.Abstract, "")
}
