package ingest

import "github.com/speedse/speed/internal/article"

// Placeholders are the stand-in values written when a BibTeX submission
// leaves a required descriptive field empty.
type Placeholders struct {
	Title   string `json:"title,omitempty"`
	Authors string `json:"authors,omitempty"`
	Journal string `json:"journal,omitempty"`
}

// DefaultPlaceholders is the placeholder table used unless configured otherwise.
var DefaultPlaceholders = Placeholders{
	Title:   "Title from BibTeX file",
	Authors: "Unknown authors",
	Journal: "Unknown journal",
}

// DefaultSubmitter is recorded when a submission names no submitter.
const DefaultSubmitter = "anonymous"

// MinYear is the earliest publication year accepted on manual submissions.
const MinYear = 1900

// WithDefaults fills any empty entry of p from DefaultPlaceholders.
func (p Placeholders) WithDefaults() Placeholders {
	if p.Title == "" {
		p.Title = DefaultPlaceholders.Title
	}
	if p.Authors == "" {
		p.Authors = DefaultPlaceholders.Authors
	}
	if p.Journal == "" {
		p.Journal = DefaultPlaceholders.Journal
	}
	return p
}

func fill(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}

// PlaceholderFields names the descriptive fields of a that still hold a
// placeholder from p, in title, authors, journal order.
func (p Placeholders) PlaceholderFields(a article.Article) []string {
	var fields []string
	if a.Title == p.Title {
		fields = append(fields, "title")
	}
	if a.Authors == p.Authors {
		fields = append(fields, "authors")
	}
	if a.Journal == p.Journal {
		fields = append(fields, "journal")
	}
	return fields
}
