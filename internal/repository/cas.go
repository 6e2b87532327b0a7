package repository

import (
	"context"
	"fmt"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
)

// casExec runs a state-changing UPDATE whose WHERE clause includes the
// version guard. Zero affected rows means another writer advanced the
// record first (or it does not exist); both read as a conflict the caller
// should resolve by re-fetching. Every optimistic write in the repository
// layer funnels through here so the compare-and-swap semantics live in one
// place.
func casExec(ctx context.Context, tx db.DBTX, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("executing guarded update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}
