package database

import (
	"database/sql"
	"time"
)

// IngestionResult is the stored header of one ingestion run: the platform,
// the counters, and the warning codes serialized as a JSON array. The
// messages themselves live in the messages table keyed by ResultID.
type IngestionResult struct {
	ID        string    `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	Platform          string `db:"platform"`
	SourceName        string `db:"source_name"`
	TotalMessages     int    `db:"total_messages"`
	ValidDateMessages int    `db:"valid_date_messages"`
	FilteredSystem    int    `db:"filtered_system_messages"`
	FilteredMedia     int    `db:"filtered_media_messages"`
	Warnings          string `db:"warnings"`
}

// StoredMessage is one normalized message of an ingestion result. Seq
// preserves the postprocessed stream order; Date is nullable because a
// message may carry no resolvable date.
type StoredMessage struct {
	ID       uint   `db:"id"`
	ResultID string `db:"result_id"`
	Seq      int    `db:"seq"`

	Timestamp string       `db:"timestamp"`
	Sender    string       `db:"sender"`
	Content   string       `db:"content"`
	Date      sql.NullTime `db:"date"`
}

// AnalysisRecord stores one analysis aggregate as a JSON document, keyed
// by the ingestion result it was computed from.
type AnalysisRecord struct {
	ResultID  string    `db:"result_id"`
	CreatedAt time.Time `db:"created_at"`
	Data      string    `db:"data"`
}
