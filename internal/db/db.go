// Package db provides optional PostgreSQL persistence of batch history.
// When no database is configured the service runs without history; a
// connection failure at startup degrades the same way.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-matcher/internal/pipeline"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// BatchRecord is one stored batch run.
type BatchRecord struct {
	ID             uuid.UUID `json:"id"`
	Requirement    string    `json:"requirement"`
	RelevantSkills []string  `json:"relevant_skills"`
	CandidateCount int       `json:"candidate_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// SaveBatch stores a completed batch and its per-candidate results.
func (db *DB) SaveBatch(ctx context.Context, requirement string, batch *pipeline.Batch) error {
	relevant, err := json.Marshal(batch.Relevant)
	if err != nil {
		return fmt.Errorf("failed to marshal relevant skills: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO batches (id, requirement, relevant_skills, candidate_count)
		 VALUES ($1, $2, $3, $4)`,
		batch.ID, requirement, relevant, len(batch.Results),
	)
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}

	for rank, res := range batch.Results {
		content, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal result for %s: %w", res.Name, err)
		}
		_, err = db.pool.Exec(ctx,
			`INSERT INTO batch_results (batch_id, rank, filename, coverage, similarity, content)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			batch.ID, rank+1, res.Name, res.Coverage, res.Similarity, content,
		)
		if err != nil {
			return fmt.Errorf("failed to save result for %s: %w", res.Name, err)
		}
	}
	return nil
}

// ListBatches returns the most recent batches, newest first.
func (db *DB) ListBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, requirement, relevant_skills, candidate_count, created_at
		 FROM batches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var out []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		var relevant []byte
		if err := rows.Scan(&rec.ID, &rec.Requirement, &relevant, &rec.CandidateCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		if err := json.Unmarshal(relevant, &rec.RelevantSkills); err != nil {
			return nil, fmt.Errorf("failed to unmarshal relevant skills: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// BatchResults returns the stored results of one batch in rank order.
func (db *DB) BatchResults(ctx context.Context, batchID uuid.UUID) ([]pipeline.Result, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT content FROM batch_results WHERE batch_id = $1 ORDER BY rank`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch results: %w", err)
	}
	defer rows.Close()

	var out []pipeline.Result
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var res pipeline.Result
		if err := json.Unmarshal(content, &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
