// Package config provides centralized configuration management for the importer.
// It loads configuration from environment variables (optionally seeded from a
// local secrets file) with sensible defaults and validates all settings on
// startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"time"
)

// DefaultEnvFile is the key=value secrets file read before the environment.
const DefaultEnvFile = ".env.python"

// Store backends.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendSQL      = "sql"
)

// Config holds all importer configuration.
// It is built once in main and passed explicitly to the components that need it.
type Config struct {
	Import  ImportConfig
	Store   StoreConfig
	Logging LoggingConfig
}

// ImportConfig holds settings for reading and normalizing the source file.
type ImportConfig struct {
	// File is the semicolon-delimited export to import (default: pessoas.csv)
	File string `env:"IMPORT_FILE" default:"pessoas.csv"`

	// CompanyCode is the tenant identifier stamped on every record (default: 1006)
	CompanyCode string `env:"IMPORT_COMPANY_CODE" default:"1006"`

	// Table is the destination collection (default: clientes)
	Table string `env:"IMPORT_TABLE" default:"clientes"`

	// DryRun processes and reports without touching the destination (default: true)
	DryRun bool `env:"IMPORT_DRY_RUN" default:"true"`

	// Encodings is the ordered list of candidate text encodings
	Encodings []string `env:"IMPORT_ENCODINGS" default:"utf-8,latin1,cp1252,iso-8859-1"`

	// FailedReport writes "<file> - failed.csv" when rows are rejected or inserts fail (default: true)
	FailedReport bool `env:"IMPORT_FAILED_REPORT" default:"true"`
}

// StoreConfig holds destination store settings.
type StoreConfig struct {
	// URL is the destination endpoint (required)
	URL string `env:"SUPABASE_URL" envAlt:"STORE_URL" required:"true"`

	// Key is the destination access key (required)
	Key string `env:"SUPABASE_KEY" envAlt:"STORE_KEY" required:"true"`

	// Backend selects the writer: rest, postgres or sql (default: rest)
	Backend string `env:"STORE_BACKEND" default:"rest"`

	// DatabaseURL is the PostgreSQL connection string, required by the postgres backend
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLOut is the script written by the sql backend
	SQLOut string `env:"STORE_SQL_OUT" default:"importacao_clientes.sql"`

	// Timeout bounds a single insert call (default: 30s)
	Timeout time.Duration `env:"STORE_TIMEOUT" default:"30s"`

	// MaxConns is the maximum number of pooled connections for the postgres backend (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of pooled connections for the postgres backend (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Mode returns a human-readable description of the execution mode.
func (c *ImportConfig) Mode() string {
	if c.DryRun {
		return "DRY-RUN (teste)"
	}
	return "PRODUÇÃO (vai inserir no banco)"
}

// String returns a safe string representation of the config for logging.
// The access key and database URL are masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Import: {File: %q, CompanyCode: %q, Table: %q, DryRun: %v}, "+
			"Store: {Backend: %q, URL: %q, Key: [MASKED], DatabaseURL: [MASKED]}, "+
			"Logging: {Level: %q, Format: %q}}",
		c.Import.File, c.Import.CompanyCode, c.Import.Table, c.Import.DryRun,
		c.Store.Backend, c.Store.URL,
		c.Logging.Level, c.Logging.Format,
	)
}
