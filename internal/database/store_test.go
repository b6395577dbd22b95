package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/chatlens/internal/analysis"
	"github.com/edgard/chatlens/internal/database"
	"github.com/edgard/chatlens/internal/ingest"
)

func newTestStore(t *testing.T) (database.Store, *sqlx.DB) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), database.PoolConfig{})
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil))), db
}

func sampleResult() ingest.ProcessResult {
	at := time.Date(2024, 3, 12, 21, 15, 0, 0, time.UTC)
	return ingest.ProcessResult{
		Platform: ingest.PlatformWhatsApp,
		Messages: []ingest.NormalizedMessage{
			{Timestamp: "12/03/2024, 21:15", Sender: "Alice", Message: "hello", Date: at},
			{Timestamp: "", Sender: "Bob", Message: "no date on this one"},
		},
		Warnings: []ingest.WarningCode{ingest.WarnSingleParticipant},
		Stats: ingest.Stats{
			TotalMessages:     2,
			ValidDateMessages: 1,
		},
	}
}

func TestStore_SaveAndGetResult(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveResult(ctx, ingest.PlatformWhatsApp, "chat.txt", sampleResult())
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	header, res, err := store.GetResult(ctx, id)
	if err != nil {
		t.Fatalf("GetResult() error = %v", err)
	}

	if header.Platform != "whatsapp" || header.SourceName != "chat.txt" {
		t.Errorf("header = %+v, want whatsapp/chat.txt", header)
	}
	if header.TotalMessages != 2 || header.ValidDateMessages != 1 {
		t.Errorf("counters = %d/%d, want 2/1", header.TotalMessages, header.ValidDateMessages)
	}
	if res.Platform != ingest.PlatformWhatsApp {
		t.Errorf("platform = %q, want whatsapp", res.Platform)
	}
	if len(res.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(res.Messages))
	}
	if res.Messages[0].Sender != "Alice" || res.Messages[1].Sender != "Bob" {
		t.Errorf("message order = [%s %s], want [Alice Bob]", res.Messages[0].Sender, res.Messages[1].Sender)
	}
	if !res.Messages[0].HasDate() {
		t.Error("first message lost its date")
	}
	if res.Messages[1].HasDate() {
		t.Error("undated message grew a date")
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != ingest.WarnSingleParticipant {
		t.Errorf("warnings = %v, want [single_participant]", res.Warnings)
	}
}

func TestStore_GetResultNotFound(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	_, _, err := store.GetResult(context.Background(), "does-not-exist")
	if !errors.Is(err, database.ErrResultNotFound) {
		t.Errorf("GetResult() error = %v, want ErrResultNotFound", err)
	}
}

func TestStore_HasSource(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	seen, err := store.HasSource(ctx, "chat.txt")
	if err != nil {
		t.Fatalf("HasSource() error = %v", err)
	}
	if seen {
		t.Error("HasSource() = true before any save")
	}

	if _, err := store.SaveResult(ctx, ingest.PlatformWhatsApp, "chat.txt", sampleResult()); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	seen, err = store.HasSource(ctx, "chat.txt")
	if err != nil {
		t.Fatalf("HasSource() error = %v", err)
	}
	if !seen {
		t.Error("HasSource() = false after save")
	}
}

func TestStore_SaveAnalysisUpserts(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveResult(ctx, ingest.PlatformWhatsApp, "chat.txt", sampleResult())
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	if _, err := store.GetAnalysis(ctx, id); !errors.Is(err, database.ErrAnalysisNotFound) {
		t.Errorf("GetAnalysis() before save error = %v, want ErrAnalysisNotFound", err)
	}

	data := analysis.Data{Feeling: analysis.Sentiment{Score: 0.8, PositiveRatio: 0.5}}
	if err := store.SaveAnalysis(ctx, id, data); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}
	if err := store.SaveAnalysis(ctx, id, data); err != nil {
		t.Errorf("SaveAnalysis() second write error = %v, want upsert", err)
	}

	got, err := store.GetAnalysis(ctx, id)
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if got.Feeling.Score != 0.8 || got.Feeling.PositiveRatio != 0.5 {
		t.Errorf("GetAnalysis() sentiment = %+v, want score 0.8 ratio 0.5", got.Feeling)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveResult(ctx, ingest.PlatformWhatsApp, "a.txt", sampleResult()); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if _, err := store.SaveResult(ctx, ingest.PlatformTelegram, "b.json", sampleResult()); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}

	headers, err := store.ListResults(ctx, 10)
	if err != nil {
		t.Fatalf("ListResults() error = %v", err)
	}
	if len(headers) != 2 {
		t.Errorf("ListResults() = %d entries, want 2", len(headers))
	}

	removed, err := store.DeleteResultsBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteResultsBefore() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("DeleteResultsBefore() removed %d, want 2", removed)
	}

	headers, err = store.ListResults(ctx, 10)
	if err != nil {
		t.Fatalf("ListResults() error = %v", err)
	}
	if len(headers) != 0 {
		t.Errorf("ListResults() after delete = %d entries, want 0", len(headers))
	}
}

func TestStore_RetentionRemovesChildRows(t *testing.T) {
	t.Parallel()

	store, db := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveResult(ctx, ingest.PlatformWhatsApp, "chat.txt", sampleResult())
	if err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	data := analysis.Data{Feeling: analysis.Sentiment{Score: 0.8, PositiveRatio: 0.5}}
	if err := store.SaveAnalysis(ctx, id, data); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	removed, err := store.DeleteResultsBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteResultsBefore() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("DeleteResultsBefore() removed %d, want 1", removed)
	}

	var messages int
	if err := db.GetContext(ctx, &messages, `SELECT COUNT(*) FROM messages;`); err != nil {
		t.Fatalf("counting messages: %v", err)
	}
	if messages != 0 {
		t.Errorf("messages after retention = %d, want 0", messages)
	}

	var analyses int
	if err := db.GetContext(ctx, &analyses, `SELECT COUNT(*) FROM analysis_results;`); err != nil {
		t.Fatalf("counting analyses: %v", err)
	}
	if analyses != 0 {
		t.Errorf("analysis rows after retention = %d, want 0", analyses)
	}
}
