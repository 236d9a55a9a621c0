// Package bibtex reads and writes the single-entry BibTeX files that
// submitters upload.
package bibtex

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// Match entry start: @type{key,
	entryHeaderRegex = regexp.MustCompile(`@(\w+)\s*\{\s*([^,]*),`)
	// Match one field: name = {value}, with an optional trailing comma.
	// The value stops at the first closing brace; nested braces are not supported.
	fieldRegex = regexp.MustCompile(`\s*(\w+)\s*=\s*\{([\s\S]*?)\}\s*,?`)

	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// authorSeparator is BibTeX's multi-author delimiter.
const authorSeparator = " and "

// Entry is a raw BibTeX entry: lower-cased field names mapped to trimmed values.
// The author field has already been converted to a comma-separated list.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// Fields is the fixed-shape result of parsing an entry. Absent values are
// empty strings; an absent or unusable year is the current year.
type Fields struct {
	Title   string `json:"title"`
	Authors string `json:"authors"`
	Journal string `json:"journal"`
	Year    int    `json:"year"`
	Volume  string `json:"volume"`
	Number  string `json:"number"`
	Pages   string `json:"pages"`
	DOI     string `json:"doi"`
}

// Blank returns the all-default field set for the given instant.
func Blank(now time.Time) Fields {
	return Fields{Year: now.Year()}
}

// Normalize converts all line endings to \n and trims surrounding whitespace,
// including trailing blank lines.
func Normalize(text string) string {
	return strings.TrimSpace(lineEndings.Replace(text))
}

// ParseEntry extracts the first entry from text.
// It returns false if text holds no complete @type{key, ...} entry.
// Anything after the first entry is ignored.
func ParseEntry(text string) (entry *Entry, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			entry, ok = nil, false
		}
	}()

	cleaned := Normalize(text)
	if cleaned == "" {
		return nil, false
	}

	loc := entryHeaderRegex.FindStringSubmatchIndex(cleaned)
	if loc == nil {
		return nil, false
	}

	end := closingBrace(cleaned, loc[1])
	if end < 0 {
		return nil, false
	}

	entry = &Entry{
		Type:   strings.ToLower(cleaned[loc[2]:loc[3]]),
		Key:    strings.TrimSpace(cleaned[loc[4]:loc[5]]),
		Fields: make(map[string]string),
	}

	for _, m := range fieldRegex.FindAllStringSubmatch(cleaned[loc[1]:end], -1) {
		key := strings.ToLower(m[1])
		value := strings.TrimSpace(m[2])
		if key == "author" {
			value = joinAuthors(value)
		}
		entry.Fields[key] = value // Last duplicate wins
	}

	return entry, true
}

// closingBrace returns the index of the brace that closes an entry whose
// body starts at start, or -1 if the entry is never closed.
func closingBrace(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			if !escaped(s, i) {
				depth++
			}
		case '}':
			if !escaped(s, i) {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

func escaped(s string, i int) bool {
	return i > 0 && s[i-1] == '\\'
}

// joinAuthors turns "Smith, J. and Doe, A." into "Smith, J., Doe, A.".
func joinAuthors(value string) string {
	names := strings.Split(value, authorSeparator)
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
	}
	return strings.Join(names, ", ")
}

// Parser maps BibTeX text onto Fields.
type Parser struct {
	// Now supplies the fallback year. Defaults to time.Now.
	Now func() time.Time
}

// Parse parses text with the wall clock.
func Parse(text string) *Fields {
	return Parser{}.Parse(text)
}

// Parse returns the mapped fields of the first entry in text, or nil if
// no entry could be found. It never panics.
func (p Parser) Parse(text string) *Fields {
	entry, ok := ParseEntry(text)
	if !ok {
		return nil
	}
	f := entry.Map(p.now())
	return &f
}

func (p Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Map converts the entry into Fields. Journal falls back to booktitle for
// proceedings entries; year falls back to now's year.
func (e *Entry) Map(now time.Time) Fields {
	journal := e.Fields["journal"]
	if journal == "" {
		journal = e.Fields["booktitle"]
	}

	return Fields{
		Title:   e.Fields["title"],
		Authors: e.Fields["author"],
		Journal: journal,
		Year:    parseYear(e.Fields["year"], now),
		Volume:  e.Fields["volume"],
		Number:  e.Fields["number"],
		Pages:   e.Fields["pages"],
		DOI:     e.Fields["doi"],
	}
}

func parseYear(s string, now time.Time) int {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year <= 0 {
		return now.Year()
	}
	return year
}
