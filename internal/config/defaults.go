package config

import "time"

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Ingest defaults: day-first date order, the 60-second/0.8-similarity
	// dedup rule, top-10 word and emoji rankings.
	DefaultDayFirst            = true
	DefaultDedupWindow         = 60 * time.Second
	DefaultSimilarityThreshold = 0.8
	DefaultTopK                = 10

	// Database defaults
	DefaultDBPath            = "chatlens.db"
	DefaultDBMaxOpenConns    = 1 // SQLite does not support concurrent writes
	DefaultDBMaxIdleConns    = 1
	DefaultDBConnMaxLifetime = 5 * time.Minute

	// Watcher defaults
	DefaultWatcherPlatform            = "auto"
	DefaultWatcherScanInterval        = 30 * time.Second
	DefaultWatcherMaintenanceSchedule = "0 3 * * *" // daily at 03:00
	DefaultWatcherRetentionDays       = 90
)
