package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jonny/helpdesk-bot/internal/adapter/outbound/persistence/sqlite/migration"
)

var validJournalModes = map[string]bool{
	"wal": true, "delete": true, "truncate": true,
	"persist": true, "memory": true, "off": true,
}

// Config holds SQLite connection configuration.
type Config struct {
	Path              string
	MaxOpenConns      int
	PragmaJournalMode string
	PragmaBusyTimeout int
}

// Store owns the audit database handle.
type Store struct {
	DB *sql.DB
}

// NewStore opens the database at cfg.Path and brings its schema up to date.
func NewStore(cfg Config) (*Store, error) {
	if cfg.PragmaJournalMode != "" && !validJournalModes[strings.ToLower(cfg.PragmaJournalMode)] {
		return nil, fmt.Errorf("invalid pragma journal mode: %q", cfg.PragmaJournalMode)
	}
	params := []string{fmt.Sprintf("_busy_timeout=%d", cfg.PragmaBusyTimeout)}
	if cfg.PragmaJournalMode != "" {
		params = append(params, "_journal_mode="+cfg.PragmaJournalMode)
	}
	db, err := sql.Open("sqlite3", cfg.Path+"?"+strings.Join(params, "&"))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := migration.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{DB: db}, nil
}

// Ping reports whether the database is reachable. It backs the readiness
// check.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.DB.Close() }
