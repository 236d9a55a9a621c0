package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/speedse/speed/internal/httpapi"
)

var (
	serveAddr  string
	serveDebug bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config and SPEED_ADDR)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the submission and moderation HTTP API",
	Long: `Serve the submission and moderation HTTP API.

Settings come from .speed/config.json, then from SPEED_ADDR,
SPEED_MAX_UPLOAD_BYTES and SPEED_RATE_LIMIT (a .env file in the repository
root is loaded first), then from --addr.

Endpoints:
  POST /api/articles                 submit (multipart bibFile, JSON or form)
  POST /api/bibtex/parse             preview a BibTeX upload
  GET  /api/articles[?status=&author=&limit=]
  GET  /api/articles/search?q=
  GET  /api/articles/export.xlsx[?status=]
  GET  /api/articles/{id}
  PUT  /api/articles/{id}/moderate   {"status","moderator_id","notes"}
  GET  /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	// Missing .env files are fine
	_ = godotenv.Load(filepath.Join(repoRoot, ".env"))

	cfg := mustLoadConfig(repoRoot)
	if err := cfg.ApplyEnv(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if serveAddr != "" {
		cfg.ServeAddr = serveAddr
	}

	level := slog.LevelInfo
	if serveDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, db := mustOpenStore(repoRoot)
	defer db.Close()

	srv := httpapi.NewServer(store, newIngestor(cfg), httpapi.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving", "repo", repoRoot, "addr", cfg.ServeAddr)
	if err := srv.ListenAndServe(ctx, cfg.ServeAddr); err != nil {
		exitWithError(ExitError, "serving: %v", err)
	}
	return nil
}
