package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/chatlens/internal/analysis"
	"github.com/edgard/chatlens/internal/ingest"
)

// Store defines the persistence operations for ingestion results and
// analysis aggregates. Methods accept context.Context for cancellation
// and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveResult persists a ProcessResult verbatim and returns the
	// generated result ID.
	SaveResult(ctx context.Context, platform ingest.Platform, sourceName string, res ingest.ProcessResult) (string, error)

	// SaveAnalysis persists the analysis aggregate for a stored result.
	SaveAnalysis(ctx context.Context, resultID string, data analysis.Data) error

	// GetResult loads a stored ProcessResult by ID.
	GetResult(ctx context.Context, resultID string) (*IngestionResult, ingest.ProcessResult, error)

	// GetAnalysis loads the stored analysis aggregate for a result.
	GetAnalysis(ctx context.Context, resultID string) (analysis.Data, error)

	// ListResults returns the most recent result headers, newest first.
	ListResults(ctx context.Context, limit int) ([]IngestionResult, error)

	// HasSource reports whether a source name was already ingested.
	// Watch mode uses it to skip files it has seen.
	HasSource(ctx context.Context, sourceName string) (bool, error)

	// DeleteResultsBefore removes results (and their messages and
	// analyses) created before the cutoff. Returns the number of
	// results removed.
	DeleteResultsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance (VACUUM, ANALYZE).
	RunSQLMaintenance(ctx context.Context) error
}

// ErrResultNotFound reports a missing ingestion result.
var ErrResultNotFound = errors.New("ingestion result not found")

// ErrAnalysisNotFound reports that no analysis was stored for a result.
var ErrAnalysisNotFound = errors.New("analysis not found")

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store implementation backed by sqlx. It requires a
// connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveResult(ctx context.Context, platform ingest.Platform, sourceName string, res ingest.ProcessResult) (string, error) {
	warnings, err := json.Marshal(res.Warnings)
	if err != nil {
		return "", fmt.Errorf("failed to marshal warnings: %w", err)
	}

	header := IngestionResult{
		ID:                uuid.NewString(),
		CreatedAt:         time.Now().UTC(),
		Platform:          string(platform),
		SourceName:        sourceName,
		TotalMessages:     res.Stats.TotalMessages,
		ValidDateMessages: res.Stats.ValidDateMessages,
		FilteredSystem:    res.Stats.FilteredSystemMessages,
		FilteredMedia:     res.Stats.FilteredMediaMessages,
		Warnings:          string(warnings),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	const headerQuery = `
        INSERT INTO ingestion_results
            (id, created_at, platform, source_name, total_messages, valid_date_messages,
             filtered_system_messages, filtered_media_messages, warnings)
        VALUES
            (:id, :created_at, :platform, :source_name, :total_messages, :valid_date_messages,
             :filtered_system_messages, :filtered_media_messages, :warnings);
    `
	if _, err := tx.NamedExecContext(ctx, headerQuery, header); err != nil {
		return "", fmt.Errorf("failed to save ingestion result: %w", err)
	}

	const msgQuery = `
        INSERT INTO messages (result_id, seq, timestamp, sender, content, date)
        VALUES (:result_id, :seq, :timestamp, :sender, :content, :date);
    `
	for i, m := range res.Messages {
		row := StoredMessage{
			ResultID:  header.ID,
			Seq:       i,
			Timestamp: m.Timestamp,
			Sender:    m.Sender,
			Content:   m.Message,
		}
		if m.HasDate() {
			row.Date = sql.NullTime{Time: m.Date, Valid: true}
		}
		if _, err := tx.NamedExecContext(ctx, msgQuery, row); err != nil {
			return "", fmt.Errorf("failed to save message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Ingestion result saved",
		"result_id", header.ID, "platform", header.Platform, "messages", len(res.Messages))
	return header.ID, nil
}

func (s *sqlxStore) SaveAnalysis(ctx context.Context, resultID string, data analysis.Data) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis data: %w", err)
	}

	const query = `
        INSERT INTO analysis_results (result_id, created_at, data)
        VALUES (?, ?, ?)
        ON CONFLICT(result_id) DO UPDATE SET created_at = excluded.created_at, data = excluded.data;
    `
	if _, err := s.db.ExecContext(ctx, query, resultID, time.Now().UTC(), string(blob)); err != nil {
		return fmt.Errorf("failed to save analysis for result %s: %w", resultID, err)
	}

	s.logger.DebugContext(ctx, "Analysis saved", "result_id", resultID)
	return nil
}

func (s *sqlxStore) GetResult(ctx context.Context, resultID string) (*IngestionResult, ingest.ProcessResult, error) {
	var header IngestionResult
	err := s.db.GetContext(ctx, &header, `SELECT * FROM ingestion_results WHERE id = ?;`, resultID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ingest.ProcessResult{}, ErrResultNotFound
	}
	if err != nil {
		return nil, ingest.ProcessResult{}, fmt.Errorf("failed to load result %s: %w", resultID, err)
	}

	var rows []StoredMessage
	err = s.db.SelectContext(ctx, &rows,
		`SELECT * FROM messages WHERE result_id = ? ORDER BY seq;`, resultID)
	if err != nil {
		return nil, ingest.ProcessResult{}, fmt.Errorf("failed to load messages for result %s: %w", resultID, err)
	}

	res := ingest.ProcessResult{
		Platform: ingest.Platform(header.Platform),
		Stats: ingest.Stats{
			TotalMessages:          header.TotalMessages,
			ValidDateMessages:      header.ValidDateMessages,
			FilteredSystemMessages: header.FilteredSystem,
			FilteredMediaMessages:  header.FilteredMedia,
		},
	}
	if header.Warnings != "" {
		if err := json.Unmarshal([]byte(header.Warnings), &res.Warnings); err != nil {
			return nil, ingest.ProcessResult{}, fmt.Errorf("failed to decode warnings for result %s: %w", resultID, err)
		}
	}
	for _, row := range rows {
		msg := ingest.NormalizedMessage{
			Timestamp: row.Timestamp,
			Sender:    row.Sender,
			Message:   row.Content,
		}
		if row.Date.Valid {
			msg.Date = row.Date.Time
		}
		res.Messages = append(res.Messages, msg)
	}

	return &header, res, nil
}

func (s *sqlxStore) GetAnalysis(ctx context.Context, resultID string) (analysis.Data, error) {
	var rec AnalysisRecord
	err := s.db.GetContext(ctx, &rec, `SELECT * FROM analysis_results WHERE result_id = ?;`, resultID)
	if errors.Is(err, sql.ErrNoRows) {
		return analysis.Data{}, ErrAnalysisNotFound
	}
	if err != nil {
		return analysis.Data{}, fmt.Errorf("failed to load analysis for result %s: %w", resultID, err)
	}

	var data analysis.Data
	if err := json.Unmarshal([]byte(rec.Data), &data); err != nil {
		return analysis.Data{}, fmt.Errorf("failed to decode analysis for result %s: %w", resultID, err)
	}
	return data, nil
}

func (s *sqlxStore) ListResults(ctx context.Context, limit int) ([]IngestionResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var headers []IngestionResult
	err := s.db.SelectContext(ctx, &headers,
		`SELECT * FROM ingestion_results ORDER BY created_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return headers, nil
}

func (s *sqlxStore) HasSource(ctx context.Context, sourceName string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM ingestion_results WHERE source_name = ?;`, sourceName)
	if err != nil {
		return false, fmt.Errorf("failed to check source %q: %w", sourceName, err)
	}
	return n > 0, nil
}

func (s *sqlxStore) DeleteResultsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM ingestion_results WHERE created_at < ?;`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old results: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted results: %w", err)
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "Removed expired ingestion results", "count", removed, "cutoff", cutoff)
	}
	return removed, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM;`); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `ANALYZE;`); err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}
	s.logger.InfoContext(ctx, "SQL maintenance completed")
	return nil
}
