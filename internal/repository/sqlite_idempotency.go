package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
)

// SQLiteIdempotencyRepo stores the memo of prior creation results. The
// primary key on the key column makes a concurrent duplicate insert fail at
// the database, which the caller surfaces as a conflict.
type SQLiteIdempotencyRepo struct {
	db db.DBTX
}

func NewSQLiteIdempotencyRepo(dbtx db.DBTX) *SQLiteIdempotencyRepo {
	return &SQLiteIdempotencyRepo{db: dbtx}
}

func (r *SQLiteIdempotencyRepo) Get(ctx context.Context, key string) (*IdempotencyRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT key, operation, payload_hash, result, created_at
		 FROM idempotency_keys WHERE key = ?`, key)

	var rec IdempotencyRecord
	var createdAtStr string
	err := row.Scan(&rec.Key, &rec.Operation, &rec.PayloadHash, &rec.Result, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning idempotency record: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &rec, nil
}

func (r *SQLiteIdempotencyRepo) Put(ctx context.Context, rec *IdempotencyRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_keys (key, operation, payload_hash, result, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.Key, rec.Operation, rec.PayloadHash, rec.Result,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting idempotency record: %w", err)
	}
	return nil
}
