package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/export"
	"github.com/speedse/speed/internal/pdf"
	"github.com/speedse/speed/internal/storage"
)

// Multipart field names used by the upload form.
const (
	fieldSubmissionType = "submissionType"
	fieldBibFile        = "bibFile"
	fieldPDFFile        = "pdfFile"
	submissionBibTeX    = "bibtex"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleCreate accepts either a multipart BibTeX upload or a manual record
// as JSON or form fields.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	src, overrides, hints, err := s.readSubmission(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	a, err := s.ingestor.Ingest(src, overrides)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if !hints.Empty() {
		s.ingestor.ApplyHints(&a, hints.Input())
	}

	var placeholders []string
	if src.Kind() == article.SourceBibTeX {
		placeholders = s.ingestor.Placeholders().PlaceholderFields(a)
	}

	created, err := s.store.Create(a)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	s.logger.Info("article submitted",
		"id", created.ID,
		"source", created.Source.Kind,
		"placeholders", placeholders,
	)
	writeJSON(w, http.StatusCreated, map[string]any{
		"article":      created,
		"placeholders": placeholders,
	})
}

func (s *Server) readSubmission(r *http.Request) (article.Source, article.Input, pdf.Hints, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var in article.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, article.Input{}, pdf.Hints{}, err
			}
			return nil, article.Input{}, pdf.Hints{}, badRequest("invalid json: %v", err)
		}
		return article.ManualSource{Fields: in}, article.Input{}, pdf.Hints{}, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
			return nil, article.Input{}, pdf.Hints{}, formError(err)
		}
		in, err := formInput(r)
		if err != nil {
			return nil, article.Input{}, pdf.Hints{}, err
		}

		bib, filename, err := readFormFile(r, fieldBibFile)
		if err != nil {
			return nil, article.Input{}, pdf.Hints{}, err
		}
		if bib == nil {
			if r.FormValue(fieldSubmissionType) == submissionBibTeX {
				return nil, article.Input{}, pdf.Hints{}, badRequest("%s is required for a bibtex submission", fieldBibFile)
			}
			return article.ManualSource{Fields: in}, article.Input{}, pdf.Hints{}, nil
		}

		hints, err := s.readPDFHints(r)
		if err != nil {
			return nil, article.Input{}, pdf.Hints{}, err
		}
		return article.BibTeXSource{RawText: string(bib), Filename: filename}, in, hints, nil

	default:
		if err := r.ParseForm(); err != nil {
			return nil, article.Input{}, pdf.Hints{}, formError(err)
		}
		in, err := formInput(r)
		if err != nil {
			return nil, article.Input{}, pdf.Hints{}, err
		}
		return article.ManualSource{Fields: in}, article.Input{}, pdf.Hints{}, nil
	}
}

// readPDFHints extracts hints from an optional attached PDF. A PDF that
// cannot be read is ignored.
func (s *Server) readPDFHints(r *http.Request) (pdf.Hints, error) {
	data, filename, err := readFormFile(r, fieldPDFFile)
	if err != nil || data == nil {
		return pdf.Hints{}, err
	}
	hints, err := pdf.ExtractHintsReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.logger.Warn("ignoring unreadable pdf", "filename", filename, "err", err)
		return pdf.Hints{}, nil
	}
	return hints, nil
}

// readFormFile returns the contents of a multipart file field, or nil when
// the field is absent.
func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", badRequest("reading %s: %v", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", field, err)
	}
	return data, header.Filename, nil
}

func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		return badRequest("%v", err)
	}
	return badRequest("parse form: %v", err)
}

// formInput reads article fields from parsed form values.
func formInput(r *http.Request) (article.Input, error) {
	in := article.Input{
		Title:       r.FormValue("title"),
		Authors:     r.FormValue("authors"),
		Journal:     r.FormValue("journal"),
		Volume:      r.FormValue("volume"),
		Number:      r.FormValue("number"),
		Pages:       r.FormValue("pages"),
		DOI:         r.FormValue("doi"),
		URL:         r.FormValue("url"),
		Abstract:    r.FormValue("abstract"),
		SubmittedBy: r.FormValue("submitted_by"),
	}
	if y := strings.TrimSpace(r.FormValue("year")); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return article.Input{}, &article.ValidationError{Invalid: []string{"year must be a number"}}
		}
		in.Year = year
	}
	return in, nil
}

// handleParse previews how a BibTeX upload would be read, without storing it.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var text []byte
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
			s.writeFailure(w, r, formError(err))
			return
		}
		data, _, err := readFormFile(r, fieldBibFile)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		if data == nil {
			s.writeFailure(w, r, badRequest("%s is required", fieldBibFile))
			return
		}
		text = data
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		text = data
	}

	fields := s.ingestor.Parser().Parse(string(text))
	writeJSON(w, http.StatusOK, map[string]any{
		"entry_found": fields != nil,
		"fields":      fields,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	articles, err := s.store.List(filter)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"articles": nonNil(articles),
		"count":    len(articles),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultSearchLimit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	query := r.URL.Query().Get("q")
	articles, err := s.store.Search(query, limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":    query,
		"articles": nonNil(articles),
		"count":    len(articles),
	})
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if r.URL.Query().Get("limit") == "" {
		filter.Limit = 0
	}

	articles, err := s.store.List(filter)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, articles); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=speed_articles.xlsx")
	w.Header().Set("Content-Type", export.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type moderateRequest struct {
	Status      string `json:"status"`
	ModeratorID string `json:"moderator_id"`
	Notes       string `json:"notes"`
}

func (s *Server) handleModerate(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, r, badRequest("invalid json: %v", err))
		return
	}

	d := article.Decision{
		Status:      article.Status(strings.ToLower(strings.TrimSpace(req.Status))),
		ModeratorID: req.ModeratorID,
		Notes:       req.Notes,
	}
	id := mux.Vars(r)["id"]
	a, err := s.store.Moderate(id, d)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	s.logger.Info("article moderated", "id", id, "status", a.Status, "moderator", a.ModeratedBy)
	writeJSON(w, http.StatusOK, a)
}

func listFilter(r *http.Request) (storage.ListFilter, error) {
	var filter storage.ListFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := article.ParseStatus(raw)
		if err != nil {
			return filter, badRequest("%v", err)
		}
		filter.Status = status
	}
	filter.Authors = r.URL.Query()["author"]

	limit, err := queryLimit(r, defaultListLimit)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit
	return filter, nil
}

func queryLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, badRequest("invalid limit: %q", raw)
	}
	return n, nil
}

func nonNil(articles []article.Article) []article.Article {
	if articles == nil {
		return []article.Article{}
	}
	return articles
}
