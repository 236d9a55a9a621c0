// Package storage persists articles as JSONL with a rebuildable SQLite
// query cache.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/speedse/speed/internal/article"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
// Articles carry their raw BibTeX upload, so lines can be long.
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all articles from a JSONL file.
func ReadAll(path string) ([]article.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Empty file returns empty slice
		}
		return nil, fmt.Errorf("opening articles file: %w", err)
	}
	defer f.Close()

	var articles []article.Article
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var a article.Article
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		articles = append(articles, a)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading articles file: %w", err)
	}

	return articles, nil
}

// Append adds an article to the end of a JSONL file.
func Append(path string, a article.Article) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening articles file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding article: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing article: %w", err)
	}

	return nil
}

// WriteAll writes all articles to a JSONL file, replacing existing content.
func WriteAll(path string, articles []article.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating articles file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, a := range articles {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encoding article %d: %w", i, err)
		}

		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing article %d: %w", i, err)
		}
	}

	return w.Flush()
}

// FindByDOI searches for an article by DOI.
func FindByDOI(articles []article.Article, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i, a := range articles {
		if a.DOI == doi {
			return i, true
		}
	}
	return -1, false
}

// FindByID searches for an article by ID.
func FindByID(articles []article.Article, id string) (int, bool) {
	for i, a := range articles {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}
