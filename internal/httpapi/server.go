// Package httpapi exposes article submission, moderation and browsing over
// HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/speedse/speed/internal/article"
	"github.com/speedse/speed/internal/ingest"
	"github.com/speedse/speed/internal/storage"
)

// ArticleStore is the persistence the server needs. *storage.Store satisfies it.
type ArticleStore interface {
	Create(a article.Article) (article.Article, error)
	Moderate(id string, d article.Decision) (article.Article, error)
	Get(id string) (article.Article, error)
	List(filter storage.ListFilter) ([]article.Article, error)
	Search(query string, limit int) ([]article.Article, error)
}

// Options tune request limits.
type Options struct {
	MaxUploadBytes int64   // Request body limit on write routes
	RateLimit      float64 // Write requests per second; <= 0 disables limiting
	RateBurst      int
	Logger         *slog.Logger
}

// Server handles the SPEED HTTP API.
type Server struct {
	store          ArticleStore
	ingestor       *ingest.Ingestor
	logger         *slog.Logger
	limiter        *rate.Limiter
	maxUploadBytes int64
}

const (
	defaultMaxUploadBytes = 5 << 20
	defaultListLimit      = 100
	defaultSearchLimit    = 50
	shutdownTimeout       = 10 * time.Second
)

// NewServer creates a Server over store, ingesting submissions with ingestor.
func NewServer(store ArticleStore, ingestor *ingest.Ingestor, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBytes := opts.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Server{
		store:          store,
		ingestor:       ingestor,
		logger:         logger,
		limiter:        rate.NewLimiter(limit, burst),
		maxUploadBytes: maxBytes,
	}
}

// Routes returns the HTTP handler for the API.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/articles", s.writeRoute(s.handleCreate)).Methods(http.MethodPost)
	api.HandleFunc("/articles", s.handleList).Methods(http.MethodGet)
	// Fixed paths must be registered before /articles/{id}
	api.HandleFunc("/articles/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/articles/export.xlsx", s.handleExportXLSX).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id}", s.handleGet).Methods(http.MethodGet)
	api.Handle("/articles/{id}/moderate", s.writeRoute(s.handleModerate)).Methods(http.MethodPut)
	api.Handle("/bibtex/parse", s.writeRoute(s.handleParse)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusNotFound, "not_found", errors.New("no such endpoint"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", errors.New("method not allowed"))
	})
	return r
}

// writeRoute wraps a mutating handler with the rate limiter and body limit.
func (s *Server) writeRoute(h http.HandlerFunc) http.Handler {
	return s.rateLimit(s.limitBody(h))
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
