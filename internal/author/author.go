// Package author splits article author lists into names and matches them
// against author filters.
package author

import (
	"regexp"
	"strings"
)

// Name is a single author split into given and family parts.
type Name struct {
	First string // Given name(s), may be empty
	Last  string // Family name
}

// Query is a parsed author filter.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

var bibtexAnd = regexp.MustCompile(`(?i)\s+and\s+`)

// Split breaks an authors field into individual names.
//
// Two layouts are understood:
//   - BibTeX lists: "Yu, Timothy and Bloom, Jesse" (each entry "Last, First"
//     or "First Last")
//   - comma-separated lists: "Timothy Yu, Jesse Bloom" or "Lee, K., Park, S."
//
// Braces are dropped and empty entries are skipped.
func Split(authors string) []Name {
	authors = strings.NewReplacer("{", "", "}", "").Replace(authors)
	authors = strings.TrimSpace(authors)
	if authors == "" {
		return nil
	}

	var names []Name
	if bibtexAnd.MatchString(authors) {
		for _, part := range bibtexAnd.Split(authors, -1) {
			if n, ok := parseName(part, true); ok {
				names = append(names, n)
			}
		}
		return names
	}

	// A single "Last, First" entry is indistinguishable from two one-word
	// names; treat a lone comma with a short tail as Last, First.
	parts := strings.Split(authors, ",")
	if len(parts) == 2 && len(strings.Fields(parts[0])) == 1 && len(strings.Fields(parts[1])) <= 2 {
		if n, ok := parseName(authors, true); ok {
			return []Name{n}
		}
	}
	for _, part := range parts {
		// "Lee, K., Park, S.": initials belong to the surname before them.
		if k := len(names) - 1; k >= 0 && names[k].First == "" && isInitials(part) {
			names[k].First = strings.TrimSpace(part)
			continue
		}
		if n, ok := parseName(part, false); ok {
			names = append(names, n)
		}
	}
	return names
}

// isInitials reports whether s looks like "K." or "J. R." or "JR".
func isInitials(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		letters := strings.ReplaceAll(strings.ReplaceAll(f, ".", ""), "-", "")
		if letters == "" || len([]rune(letters)) > 2 || strings.ToUpper(letters) != letters {
			return false
		}
	}
	return true
}

func parseName(s string, allowComma bool) (Name, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Name{}, false
	}
	if allowComma {
		if idx := strings.Index(s, ","); idx > 0 {
			return Name{
				First: strings.TrimSpace(s[idx+1:]),
				Last:  strings.TrimSpace(s[:idx]),
			}, true
		}
	}
	fields := strings.Fields(s)
	if len(fields) == 1 {
		return Name{Last: fields[0]}, true
	}
	return Name{
		First: strings.Join(fields[:len(fields)-1], " "),
		Last:  fields[len(fields)-1],
	}, true
}

// ParseQuery parses an author filter string.
//
// Supported formats:
//   - "Yu"           → last="Yu"
//   - "Timothy Yu"   → first="Timothy", last="Yu"
//   - "Yu, Timothy"  → first="Timothy", last="Yu"
func ParseQuery(input string) Query {
	n, ok := parseName(input, true)
	if !ok {
		return Query{}
	}
	return Query(n)
}

// Matches reports whether the query matches n. Last names must match
// exactly and first names by prefix, both case-insensitively, so "Tim Yu"
// matches "Timothy C Yu" but "Yu" does not match "Yujia".
func (q Query) Matches(n Name) bool {
	if q.Last == "" || !strings.EqualFold(q.Last, n.Last) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(n.First), strings.ToLower(q.First))
}

// MatchesAny reports whether the query matches any of names.
func (q Query) MatchesAny(names []Name) bool {
	for _, n := range names {
		if q.Matches(n) {
			return true
		}
	}
	return false
}

// AllMatch reports whether every query matches at least one author in the
// authors field.
func AllMatch(queries []Query, authors string) bool {
	if len(queries) == 0 {
		return true
	}
	names := Split(authors)
	for _, q := range queries {
		if !q.MatchesAny(names) {
			return false
		}
	}
	return true
}

// ParseQueries parses each non-empty filter in inputs.
func ParseQueries(inputs []string) []Query {
	var out []Query
	for _, in := range inputs {
		if q := ParseQuery(in); q.Last != "" {
			out = append(out, q)
		}
	}
	return out
}
