// Package store keeps an anonymous log of assessment outcomes in Postgres.
// Only the tier, the probability and the number of triggered factors are
// written; profile fields never leave the request.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessment_log (
	id           UUID PRIMARY KEY,
	tier         TEXT NOT NULL,
	probability  DOUBLE PRECISION NOT NULL,
	factor_count INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
)`

const insertEntry = `
INSERT INTO assessment_log (id, tier, probability, factor_count, created_at)
VALUES ($1, $2, $3, $4, $5)`

type Entry struct {
	ID          uuid.UUID
	Tier        string
	Probability float64
	FactorCount int
	CreatedAt   time.Time
}

type AssessmentLog struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*AssessmentLog, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &AssessmentLog{pool: pool}, nil
}

func (l *AssessmentLog) EnsureSchema(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create assessment_log: %w", err)
	}
	return nil
}

// Record inserts one entry, filling ID and CreatedAt when they are zero.
func (l *AssessmentLog) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if _, err := l.pool.Exec(ctx, insertEntry, e.ID, e.Tier, e.Probability, e.FactorCount, e.CreatedAt); err != nil {
		return fmt.Errorf("insert assessment_log: %w", err)
	}
	return nil
}

func (l *AssessmentLog) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx)
}

func (l *AssessmentLog) Close() {
	l.pool.Close()
}
