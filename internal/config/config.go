// Package config provides centralized configuration for the import pipeline.
// Settings come from environment variables with defaults and are validated
// on load so a misconfigured run fails before any file is read.
package config

import "time"

// Store drivers accepted by StoreConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all pipeline configuration.
type Config struct {
	Store   StoreConfig
	Import  ImportConfig
	Logging LoggingConfig
}

// StoreConfig selects and tunes the record store.
type StoreConfig struct {
	// Driver is one of memory, sqlite, postgres (default: sqlite)
	Driver string `env:"STORE_DRIVER" default:"sqlite"`

	// URL is the PostgreSQL connection string, required for the postgres driver.
	// Supports both DATABASE_URL and DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the database file for the sqlite driver (default: ./records.db)
	SQLitePath string `env:"SQLITE_PATH" default:"./records.db"`

	// MaxConns is the maximum number of pooled connections (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections kept open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds reader and pipeline settings.
type ImportConfig struct {
	// Delimiter separates cells in a line (default: ",")
	Delimiter string `env:"IMPORT_DELIMITER" default:","`

	// ListDelimiter separates items in list-valued cells (default: ";")
	ListDelimiter string `env:"IMPORT_LIST_DELIMITER" default:";"`

	// EmptyTokens are cell values treated as empty (default: null,NULL,n/a,N/A,-)
	EmptyTokens []string `env:"IMPORT_EMPTY_TOKENS" default:"null,NULL,n/a,N/A,-"`

	// MaxFileSize is the largest accepted input in bytes (default: 50MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"52428800"`

	// BatchSize splits the commit into atomic chunks; 0 commits one batch (default: 0)
	BatchSize int `env:"IMPORT_BATCH_SIZE" default:"0"`

	// MaxConcurrent caps simultaneous runs; 0 disables the cap (default: 0)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"0"`

	// MaxWaitTime is how long a run waits for a slot when capped (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// DefaultVisibility is the tier set given to new records (default: free)
	DefaultVisibility []string `env:"IMPORT_DEFAULT_VISIBILITY" default:"free"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
