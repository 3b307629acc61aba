package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// Config holds SQLite-specific database configuration.
type Config struct {
	// Path is the database file path, or ":memory:" for an in-memory database.
	Path string

	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration

	// EnableForeignKeys enables foreign key constraint checking.
	EnableForeignKeys bool

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE).
	JournalMode string

	// MaxOpenConns sets the maximum number of open connections.
	MaxOpenConns int

	// MaxIdleConns sets the maximum number of idle connections.
	MaxIdleConns int

	// ConnMaxLifetime sets the maximum lifetime of connections.
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the configuration used when nothing is specified:
// WAL journaling, foreign keys on, a five second busy timeout.
func DefaultConfig(path string) Config {
	return Config{
		Path:              path,
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		MaxOpenConns:      1,
		MaxIdleConns:      1,
		ConnMaxLifetime:   time.Hour,
	}
}

// DSN renders the connection string with pragmas applied at open time.
func (c Config) DSN() string {
	pragmas := make([]string, 0, 3)
	if c.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	}
	if c.EnableForeignKeys {
		pragmas = append(pragmas, "_pragma=foreign_keys(1)")
	}
	if c.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=journal_mode(%s)", c.JournalMode))
	}
	if len(pragmas) == 0 {
		return c.Path
	}
	return fmt.Sprintf("file:%s?%s", c.Path, strings.Join(pragmas, "&"))
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("sqlite: database path is required")
	}
	switch c.JournalMode {
	case "", "WAL", "DELETE", "TRUNCATE", "MEMORY":
	default:
		return fmt.Errorf("sqlite: unknown journal mode %q", c.JournalMode)
	}
	return nil
}
