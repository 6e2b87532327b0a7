package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesAllTables(t *testing.T) {
	database, err := Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	tables := []string{
		"projects", "baselines", "baseline_estimates", "line_items",
		"allocation_rules", "allocation_targets", "adjustments",
		"actuals", "month_closes", "idempotency_keys",
	}
	for _, table := range tables {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Rerunnable(t *testing.T) {
	database, err := Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	// Running migrations again on an up-to-date schema must be a no-op.
	require.NoError(t, Migrate(database))
	require.NoError(t, Migrate(database))
}

func TestOpen_ForeignKeysEnforced(t *testing.T) {
	database, err := Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(
		`INSERT INTO baselines (id, project_id, created_at, updated_at)
		 VALUES ('bl-1', 'missing-project', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`,
	)
	require.Error(t, err, "baseline insert without its project must violate the FK")
}

func TestSchema_StatusChecksRejectUnknownValues(t *testing.T) {
	database, err := Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(
		`INSERT INTO projects (id, code, name, start_date, status, created_at, updated_at)
		 VALUES ('p1', 'NET-MX01', 'Net', '2026-01-01', 'bogus', 'x', 'x')`,
	)
	require.Error(t, err, "unknown project status must be rejected by CHECK")
}
