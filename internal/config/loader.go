package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration in precedence order:
// 1. Default values
// 2. The config file at path (optional; a missing file is fine)
// 3. CHATLENS_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CHATLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional; a missing one falls through to
	// defaults plus environment variables.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("ingest.day_first", DefaultDayFirst)
	v.SetDefault("ingest.dedup_window", DefaultDedupWindow)
	v.SetDefault("ingest.similarity_threshold", DefaultSimilarityThreshold)
	v.SetDefault("ingest.top_k", DefaultTopK)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.max_open_conns", DefaultDBMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultDBMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultDBConnMaxLifetime)

	v.SetDefault("watcher.platform", DefaultWatcherPlatform)
	v.SetDefault("watcher.scan_interval", DefaultWatcherScanInterval)
	v.SetDefault("watcher.maintenance_schedule", DefaultWatcherMaintenanceSchedule)
	v.SetDefault("watcher.retention_days", DefaultWatcherRetentionDays)
}
