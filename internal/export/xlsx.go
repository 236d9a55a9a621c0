// Package export renders articles as spreadsheets for offline review.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/speedse/speed/internal/article"
)

// Sheet names in the exported workbook.
const (
	ArticlesSheet = "Articles"
	SummarySheet  = "Summary"
)

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns lists the header row of the articles sheet.
var Columns = []string{
	"ID", "Title", "Authors", "Journal", "Year", "Volume", "Number", "Pages",
	"DOI", "Status", "Source", "Submitted By", "Moderated By", "Moderated At",
	"Notes", "Created At",
}

// WriteXLSX writes articles to w as an .xlsx workbook with an articles sheet
// and a per-status summary sheet.
func WriteXLSX(w io.Writer, articles []article.Article) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ArticlesSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := writeRow(f, ArticlesSheet, 1, toCells(Columns)); err != nil {
		return err
	}
	for i, a := range articles {
		if err := writeRow(f, ArticlesSheet, i+2, articleRow(a)); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ArticlesSheet, "B", "D", 40); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	if err := writeRow(f, SummarySheet, 1, []interface{}{"Status", "Count"}); err != nil {
		return err
	}
	counts := countByStatus(articles)
	for i, s := range article.ValidStatuses {
		if err := writeRow(f, SummarySheet, i+2, []interface{}{string(s), counts[s]}); err != nil {
			return err
		}
	}
	if err := writeRow(f, SummarySheet, len(article.ValidStatuses)+2, []interface{}{"total", len(articles)}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func articleRow(a article.Article) []interface{} {
	var moderatedAt string
	if a.ModeratedAt != nil {
		moderatedAt = a.ModeratedAt.UTC().Format(time.RFC3339)
	}
	var createdAt string
	if !a.CreatedAt.IsZero() {
		createdAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	source := string(a.Source.Kind)
	if a.Source.Filename != "" {
		source += ": " + a.Source.Filename
	}

	return []interface{}{
		a.ID, a.Title, a.Authors, a.Journal, strconv.Itoa(a.Year),
		a.Volume, a.Number, a.Pages, a.DOI, string(a.Status), source,
		a.SubmittedBy, a.ModeratedBy, moderatedAt, a.ModerationNotes, createdAt,
	}
}

func countByStatus(articles []article.Article) map[article.Status]int {
	counts := make(map[article.Status]int)
	for _, a := range articles {
		counts[a.Status]++
	}
	return counts
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
