package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"lentera-hq/gateway/pkg/gateway"
)

// StorageConfig contains configuration for the SQLite audit storage.
type StorageConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultStorageConfig returns the default storage configuration.
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		BusyTimeout:  5 * time.Second,
	}
}

// Storage persists audit entries in SQLite.
type Storage struct {
	db         *sql.DB
	insertStmt *sql.Stmt
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewStorage opens (or creates) the audit database.
func NewStorage(config *StorageConfig) (*Storage, error) {
	if config == nil {
		config = DefaultStorageConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = 10
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 5
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &Storage{
		db:     db,
		logger: slog.Default().With("component", "audit.storage"),
	}

	if err := s.initialize(config); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) initialize(config *StorageConfig) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", config.BusyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		upstream TEXT NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status INTEGER NOT NULL,
		code TEXT NOT NULL DEFAULT '',
		latency_ms INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_recorded_at ON audit_log(recorded_at);
	CREATE INDEX IF NOT EXISTS idx_audit_endpoint ON audit_log(endpoint);
	CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit_log(request_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var err error
	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO audit_log (id, request_id, endpoint, upstream, method, path, status, code, latency_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	return nil
}

// Insert persists a single audit entry.
func (s *Storage) Insert(ctx context.Context, entry *gateway.AuditEntry) error {
	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}

	at := entry.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.insertStmt.ExecContext(ctx,
		uuid.NewString(),
		entry.RequestID,
		entry.Endpoint,
		entry.Upstream,
		entry.Method,
		entry.Path,
		entry.Status,
		entry.Code,
		entry.Latency.Milliseconds(),
		at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *Storage) Recent(ctx context.Context, limit int) ([]*gateway.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, endpoint, upstream, method, path, status, code, latency_ms, recorded_at
		FROM audit_log
		ORDER BY recorded_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*gateway.AuditEntry
	for rows.Next() {
		var (
			entry      gateway.AuditEntry
			latencyMS  int64
			recordedAt int64
		)
		if err := rows.Scan(
			&entry.RequestID,
			&entry.Endpoint,
			&entry.Upstream,
			&entry.Method,
			&entry.Path,
			&entry.Status,
			&entry.Code,
			&latencyMS,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entry.Latency = time.Duration(latencyMS) * time.Millisecond
		entry.At = time.Unix(recordedAt, 0)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// Count returns the total number of stored entries.
func (s *Storage) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes entries recorded before the cutoff and returns
// the number deleted.
func (s *Storage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_log WHERE recorded_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Ping verifies the database is reachable. Used by the readiness probe.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database. Safe to call multiple times.
func (s *Storage) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		if s.insertStmt != nil {
			s.insertStmt.Close()
		}
		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}
