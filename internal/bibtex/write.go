package bibtex

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/speedse/speed/internal/article"
)

// ToBibTeX converts an article to a BibTeX entry.
func ToBibTeX(a article.Article) string {
	entryType := determineEntryType(a)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, CiteKey(a)))

	if a.Authors != "" {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", escapeLatex(a.Authors)))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(a.Title)))

	// Venue
	if a.Journal != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(a.Journal)))
	}

	b.WriteString(fmt.Sprintf("  year = {%d},\n", a.Year))

	writeOptional(&b, "volume", a.Volume)
	writeOptional(&b, "number", a.Number)
	writeOptional(&b, "pages", a.Pages)

	// DOI and URL are written unescaped
	if a.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", a.DOI))
	}
	if a.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", a.URL))
	}

	writeOptional(&b, "abstract", a.Abstract)

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple articles to BibTeX format.
func ToBibTeXList(articles []article.Article) string {
	var entries []string
	for _, a := range articles {
		entries = append(entries, ToBibTeX(a))
	}
	return strings.Join(entries, "\n")
}

func writeOptional(b *strings.Builder, name, value string) {
	if value != "" {
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", name, escapeLatex(value)))
	}
}

// CiteKey derives a citation key from the first author's surname, the year
// and a short prefix of the article ID, e.g. "Smith2020-3f2a".
func CiteKey(a article.Article) string {
	key := firstSurname(a.Authors)
	if key == "" {
		key = "Anon"
	}
	key += fmt.Sprintf("%d", a.Year)

	if id := strings.ReplaceAll(a.ID, "-", ""); id != "" {
		if len(id) > 4 {
			id = id[:4]
		}
		key += "-" + id
	}
	return key
}

// firstSurname picks a surname out of a comma-separated author list.
// Both "Smith, J., Doe, A." and "John Smith, Ann Doe" yield "Smith".
func firstSurname(authors string) string {
	first, _, _ := strings.Cut(authors, ",")
	words := strings.Fields(first)
	if len(words) == 0 {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, words[len(words)-1])
}

// determineEntryType returns the BibTeX entry type for an article.
func determineEntryType(a article.Article) string {
	venue := strings.ToLower(a.Journal)

	// Preprints
	if strings.Contains(venue, "arxiv") {
		return "article"
	}

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "proc.") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	return "article"
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
