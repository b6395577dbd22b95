// Package config manages application configuration from config.yaml,
// CHATLENS_-prefixed environment variables, and default values.
package config

import (
	"time"
)

// Config defines the application configuration: logging, ingestion policy,
// database, and the optional watch-mode scheduler.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Database DatabaseConfig `mapstructure:"database"`
	Watcher  WatcherConfig  `mapstructure:"watcher"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// IngestConfig carries the ingestion policy knobs. DayFirst is the
// documented default for the ambiguous numeric-date tie-break; changing it
// is a locale decision, not a bug fix.
type IngestConfig struct {
	DayFirst            bool          `mapstructure:"day_first"`
	DedupWindow         time.Duration `mapstructure:"dedup_window"         validate:"min=1s,max=10m"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold" validate:"gt=0,lte=1"`
	TopK                int           `mapstructure:"top_k"                validate:"min=1,max=100"`
}

// DatabaseConfig configures the SQLite result store.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"              validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// WatcherConfig configures watch mode: the directory scanned for new
// export files, the platform hint applied to them, and the scheduled
// maintenance task.
type WatcherConfig struct {
	Dir                 string        `mapstructure:"dir"`
	Platform            string        `mapstructure:"platform"             validate:"oneof=whatsapp instagram discord telegram snapchat auto"`
	ScanInterval        time.Duration `mapstructure:"scan_interval"        validate:"min=1s"`
	MaintenanceSchedule string        `mapstructure:"maintenance_schedule" validate:"required"`
	RetentionDays       int           `mapstructure:"retention_days"       validate:"min=0"`
}
