// Package store keeps completed matching sessions for the re-download
// flow. A session is keyed by a request-scoped identifier and passed
// explicitly; nothing here is process-global matching state. Two
// backends: an in-memory map and a sqlite file that survives restarts.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-matcher/internal/pipeline"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// DefaultTTL bounds how long a session stays retrievable.
const DefaultTTL = 30 * time.Minute

// Session is one completed batch held for later retrieval: the raw
// requirement text, the relevant skill set and the ranked results.
type Session struct {
	ID          uuid.UUID         `json:"session_id"`
	CreatedAt   time.Time         `json:"created_at"`
	Requirement string            `json:"requirement"`
	Relevant    []string          `json:"relevant_skills"`
	Results     []pipeline.Result `json:"results"`
}

// Store persists and retrieves sessions. Implementations are safe for
// concurrent use.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}
