package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgard/chatlens/internal/config"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if !cfg.Ingest.DayFirst {
		t.Error("day_first default = false, want true")
	}
	if cfg.Ingest.DedupWindow != 60*time.Second {
		t.Errorf("dedup window = %v, want 60s", cfg.Ingest.DedupWindow)
	}
	if cfg.Ingest.SimilarityThreshold != 0.8 {
		t.Errorf("similarity threshold = %v, want 0.8", cfg.Ingest.SimilarityThreshold)
	}
	if cfg.Ingest.TopK != 10 {
		t.Errorf("top_k = %d, want 10", cfg.Ingest.TopK)
	}
	if cfg.Database.MaxOpenConns != 1 {
		t.Errorf("max open conns = %d, want 1", cfg.Database.MaxOpenConns)
	}
	if cfg.Watcher.Platform != "auto" {
		t.Errorf("watcher platform = %q, want auto", cfg.Watcher.Platform)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log:
  level: debug
  format: text
ingest:
  day_first: false
  dedup_window: 90s
  top_k: 25
watcher:
  platform: whatsapp
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v, want debug/text", cfg.Log)
	}
	if cfg.Ingest.DayFirst {
		t.Error("day_first = true, want overridden to false")
	}
	if cfg.Ingest.DedupWindow != 90*time.Second {
		t.Errorf("dedup window = %v, want 90s", cfg.Ingest.DedupWindow)
	}
	if cfg.Ingest.TopK != 25 {
		t.Errorf("top_k = %d, want 25", cfg.Ingest.TopK)
	}
	if cfg.Watcher.Platform != "whatsapp" {
		t.Errorf("watcher platform = %q, want whatsapp", cfg.Watcher.Platform)
	}
	// Untouched keys keep their defaults.
	if cfg.Ingest.SimilarityThreshold != 0.8 {
		t.Errorf("similarity threshold = %v, want default 0.8", cfg.Ingest.SimilarityThreshold)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "Bad log level",
			content: "log:\n  level: loud\n",
		},
		{
			name:    "Similarity threshold above one",
			content: "ingest:\n  similarity_threshold: 1.5\n",
		},
		{
			name:    "Unknown watcher platform",
			content: "watcher:\n  platform: myspace\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := config.Load(path); err == nil {
				t.Error("Load() accepted invalid config")
			}
		})
	}
}
