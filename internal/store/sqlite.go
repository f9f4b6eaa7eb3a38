package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fafsabuddy/server/internal/domain"
	_ "modernc.org/sqlite"
)

// isSQLiteConflict reports whether err is a SQLITE_BUSY or "database is
// locked" error, both of which warrant a retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // Serializes session writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed session store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS intake_sessions (
		session_id TEXT PRIMARY KEY,
		fields_json TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_intake_sessions_expires ON intake_sessions(expires_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load retrieves the session, or an empty one when none is stored or the
// stored row has expired.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	query := `SELECT fields_json, messages_json, expires_at FROM intake_sessions WHERE session_id = ?`
	row := s.db.QueryRowContext(ctx, query, sessionID)

	var fieldsJSON, messagesJSON string
	var expiresAt int64
	err := row.Scan(&fieldsJSON, &messagesJSON, &expiresAt)
	if err == sql.ErrNoRows {
		return domain.NewSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan intake session: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		return domain.NewSession(), nil
	}

	session := domain.NewSession()
	if err := json.Unmarshal([]byte(fieldsJSON), &session.Fields); err != nil {
		return nil, fmt.Errorf("decode session fields: %w", err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &session.Messages); err != nil {
		return nil, fmt.Errorf("decode session messages: %w", err)
	}
	return session, nil
}

// Save stores the session and resets its expiration.
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, session *domain.Session, ttl time.Duration) error {
	fieldsJSON, err := json.Marshal(session.Fields)
	if err != nil {
		return fmt.Errorf("encode session fields: %w", err)
	}
	messagesJSON, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("encode session messages: %w", err)
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	now := time.Now()
	query := `
		INSERT INTO intake_sessions (session_id, fields_json, messages_json, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			fields_json = excluded.fields_json,
			messages_json = excluded.messages_json,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`

	_, err = s.db.ExecContext(ctx, query,
		sessionID, string(fieldsJSON), string(messagesJSON),
		now.Unix(), now.Unix(), now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert intake session: %w", err)
	}
	return nil
}

// Delete removes the session state.
// Retries with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.deleteOnce(ctx, sessionID)
		if err == nil {
			return nil
		}

		if isSQLiteConflict(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // 100ms, 200ms, 400ms
			slog.Debug("session delete hit SQLITE_BUSY, retrying",
				"session_id", sessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		return fmt.Errorf("delete session %s after %d attempts: %w", sessionID, i+1, err)
	}
	return nil
}

func (s *SQLiteStore) deleteOnce(ctx context.Context, sessionID string) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM intake_sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete intake session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiration.
func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM intake_sessions WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
