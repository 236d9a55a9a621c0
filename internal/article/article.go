// Package article defines the core domain types for submitted research articles.
package article

import "time"

// Article represents a submitted piece of empirical SE evidence.
type Article struct {
	// Identity (assigned by storage)
	ID string `json:"id"`

	// Required descriptive fields
	Title   string `json:"title"`
	Authors string `json:"authors"` // Comma-separated, human readable
	Journal string `json:"journal"` // Journal or proceedings title
	Year    int    `json:"year"`

	// Optional descriptive fields
	Volume   string `json:"volume"`
	Number   string `json:"number"`
	Pages    string `json:"pages"`
	DOI      string `json:"doi"`
	URL      string `json:"url,omitempty"`
	Abstract string `json:"abstract,omitempty"`

	// Workflow
	Status Status `json:"status"`

	// Provenance
	Source       Provenance `json:"source"`
	BibTeXSource string     `json:"bibtex_source,omitempty"` // Verbatim upload, kept for audit
	SubmittedBy  string     `json:"submitted_by"`

	// Moderation (written only by Moderate)
	ModerationNotes string     `json:"moderation_notes,omitempty"`
	ModeratedBy     string     `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`

	// Lifecycle (assigned by storage)
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SourceKind names how an article entered the system.
type SourceKind string

const (
	SourceBibTeX SourceKind = "bibtex"
	SourceManual SourceKind = "manual"
)

// Provenance tracks where an article was ingested from.
type Provenance struct {
	Kind     SourceKind `json:"kind"`
	Filename string     `json:"filename,omitempty"` // Uploaded file name, if any
}
