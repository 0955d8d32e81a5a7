// Package config provides centralized configuration management for the importer.
// It loads configuration from environment variables, an optional TOML file and
// built-in defaults, then validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// Every setting can be configured via environment variables.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Content ContentConfig `toml:"content"`
	Storage StorageConfig `toml:"storage"`
	State   StateConfig   `toml:"state"`
	Import  ImportConfig  `toml:"import"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP admin server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" toml:"host" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" toml:"port" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" toml:"read_timeout" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 0, imports can be slow)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" toml:"write_timeout" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" toml:"idle_timeout" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" toml:"shutdown_timeout" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" toml:"request_timeout" default:"5m"`
}

// ContentConfig describes where the source tables live and how records are shaped.
type ContentConfig struct {
	// ModulePath is the directory holding default_content/ (required)
	ModulePath string `env:"CONTENT_MODULE_PATH" envAlt:"MODULE_PATH" toml:"module_path" required:"true"`

	// DefaultLanguage is the language every entity is created in (default: en)
	DefaultLanguage string `env:"CONTENT_DEFAULT_LANGUAGE" toml:"default_language" default:"en"`

	// Languages is the comma-separated list of enabled languages (default: en,es)
	Languages []string `env:"CONTENT_LANGUAGES" toml:"languages" default:"en,es"`

	// BodyFormat is the text format attached to body fields (default: basic_html)
	BodyFormat string `env:"CONTENT_BODY_FORMAT" toml:"body_format" default:"basic_html"`

	// AuthorRole is the role given to created author accounts (default: author)
	AuthorRole string `env:"CONTENT_AUTHOR_ROLE" toml:"author_role" default:"author"`

	// AuthorEmailDomain is the domain of generated author emails (default: example.com)
	AuthorEmailDomain string `env:"CONTENT_AUTHOR_EMAIL_DOMAIN" toml:"author_email_domain" default:"example.com"`

	// RegistryKey is the state key holding created-record provenance
	RegistryKey string `env:"CONTENT_REGISTRY_KEY" toml:"registry_key" default:"demo_dashboard_content_uuids"`
}

// StorageConfig selects and configures the entity store.
type StorageConfig struct {
	// Backend is one of sqlite, postgres, memory (default: sqlite)
	Backend string `env:"STORAGE_BACKEND" toml:"backend" default:"sqlite"`

	// SQLitePath is the database file for the sqlite backend
	SQLitePath string `env:"SQLITE_PATH" toml:"sqlite_path" default:"data/content.db"`

	// DatabaseURL is the PostgreSQL connection string for the postgres backend
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL" toml:"database_url"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" toml:"max_conns" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" toml:"min_conns" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" toml:"max_conn_lifetime" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" toml:"max_conn_idle_time" default:"30m"`
}

// StateConfig selects where the provenance registry is kept.
type StateConfig struct {
	// Backend is one of badger, database, memory (default: badger)
	Backend string `env:"STATE_BACKEND" toml:"backend" default:"badger"`

	// Dir is the badger data directory
	Dir string `env:"STATE_DIR" toml:"dir" default:"data/state"`
}

// ImportConfig holds import run settings.
type ImportConfig struct {
	// MaxWaitTime is how long a run waits for another run to finish (default: 5s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" toml:"max_wait_time" default:"5s"`

	// Timeout is the maximum duration of one import or delete run (default: 10m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" toml:"timeout" default:"10m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" toml:"level" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" toml:"format" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
