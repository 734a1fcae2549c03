package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite persists sessions to a sqlite file so they survive restarts.
// Rows are serialized as JSON; expiry is enforced on read and by a
// purge on every write.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	payload    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);
`

// NewSQLite opens (or creates) the session database at path.
func NewSQLite(path string, ttl time.Duration) (*SQLite, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize session schema: %w", err)
	}
	return &SQLite{db: db, ttl: ttl}, nil
}

// Put stores a session and purges expired rows.
func (s *SQLite) Put(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET created_at = excluded.created_at, payload = excluded.payload`,
		sess.ID.String(), sess.CreatedAt.Unix(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	cutoff := time.Now().Add(-s.ttl).Unix()
	_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < ?`, cutoff)
	return nil
}

// Get returns a session or ErrNotFound when absent or expired.
func (s *SQLite) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	var createdAt int64
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, payload FROM sessions WHERE id = ?`, id.String(),
	).Scan(&createdAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if time.Since(time.Unix(createdAt, 0)) > s.ttl {
		return nil, ErrNotFound
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session; deleting a missing session is not an error.
func (s *SQLite) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
