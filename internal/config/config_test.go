package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/speedse/speed/internal/ingest"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"SpeedPath", SpeedPath, "/test/repo/.speed"},
		{"ConfigPath", ConfigPath, "/test/repo/.speed/config.json"},
		{"ArticlesPath", ArticlesPath, "/test/repo/.speed/articles.jsonl"},
		{"CachePath", CachePath, "/test/repo/.speed/cache"},
		{"DBPath", DBPath, "/test/repo/.speed/cache/articles.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	// Not a repository initially
	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-repo directory")
	}

	if err := os.Mkdir(filepath.Join(tmpDir, SpeedDir), 0755); err != nil {
		t.Fatalf("Failed to create .speed: %v", err)
	}

	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false for repo directory")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, SpeedDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .speed file: %v", err)
	}

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .speed is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, SpeedDir), 0755); err != nil {
		t.Fatalf("Failed to create .speed: %v", err)
	}
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}

	got, err := FindRepository(nested)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	want, _ := filepath.Abs(tmpDir)
	if got != want {
		t.Errorf("FindRepository() = %q, want %q", got, want)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	if _, err := FindRepository(t.TempDir()); err == nil {
		t.Error("FindRepository() should fail outside a repository")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(SpeedPath(tmpDir), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{
		DefaultSubmitter: "lab-bot",
		ServeAddr:        ":9000",
		Placeholders:     &ingest.Placeholders{Title: "Untitled"},
	}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.DefaultSubmitter != "lab-bot" {
		t.Errorf("DefaultSubmitter = %q, want lab-bot", loaded.DefaultSubmitter)
	}
	if loaded.ServeAddr != ":9000" {
		t.Errorf("ServeAddr = %q, want :9000", loaded.ServeAddr)
	}
	// Unset values come from defaults
	if loaded.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("MaxUploadBytes = %d, want %d", loaded.MaxUploadBytes, DefaultMaxUploadBytes)
	}
	if loaded.RateLimit != DefaultRateLimit || loaded.RateBurst != DefaultRateBurst {
		t.Errorf("rate = %g/%d, want defaults", loaded.RateLimit, loaded.RateBurst)
	}

	p := loaded.IngestPlaceholders()
	if p.Title != "Untitled" {
		t.Errorf("Placeholders.Title = %q, want Untitled", p.Title)
	}
	if p.Authors != ingest.DefaultPlaceholders.Authors || p.Journal != ingest.DefaultPlaceholders.Journal {
		t.Errorf("Placeholders = %+v, want defaults for authors and journal", p)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load() should fail without config.json")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	os.MkdirAll(SpeedPath(tmpDir), 0755)
	os.WriteFile(ConfigPath(tmpDir), []byte("{bad"), 0644)

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should fail on invalid JSON")
	}
}

func TestLoad_InvalidLimits(t *testing.T) {
	tmpDir := t.TempDir()
	os.MkdirAll(SpeedPath(tmpDir), 0755)
	os.WriteFile(ConfigPath(tmpDir), []byte(`{"max_upload_bytes": -1}`), 0644)

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should reject negative max_upload_bytes")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvMaxUploadBytes, "1024")
	t.Setenv(EnvRateLimit, "0.5")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.ServeAddr != ":7000" || cfg.MaxUploadBytes != 1024 || cfg.RateLimit != 0.5 {
		t.Errorf("ApplyEnv() = %+v", cfg)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvMaxUploadBytes, "lots"},
		{EnvMaxUploadBytes, "0"},
		{EnvRateLimit, "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if err := Default().ApplyEnv(); err == nil {
				t.Errorf("ApplyEnv() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/papers", filepath.Join(home, "papers")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
