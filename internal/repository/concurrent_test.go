package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dortega/finz/internal/db"
	"github.com/dortega/finz/internal/domain"
	"github.com/dortega/finz/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp
// directory. Unlike :memory:, a file-backed DB shares state across all
// connections in the pool, which is required to exercise real concurrent
// access with WAL mode.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "concurrent_test.db")
	database, err := db.Open(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// TestConcurrent_BaselineAccept_SingleWinner races two reviewers accepting
// the same submitted-and-handed-off baseline from the same read version.
// Exactly one transition may land; the loser sees a version conflict.
func TestConcurrent_BaselineAccept_SingleWinner(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	projects := NewSQLiteProjectRepo(database)
	baselines := NewSQLiteBaselineRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	proj := testutil.NewTestProject("Race")
	require.NoError(t, projects.Create(ctx, proj))

	b := testutil.NewTestBaseline(proj.ID,
		testutil.WithStatus(domain.BaselineHandedOff),
		testutil.WithVersion(3),
		testutil.WithHandedOffBy("estimator@example.com"),
	)
	require.NoError(t, baselines.Create(ctx, b))

	// Both reviewers read the baseline at version 3 before either commits.
	reads := make([]*domain.Baseline, 2)
	for i, actor := range []string{"controller-a@example.com", "controller-b@example.com"} {
		read, err := baselines.GetByID(ctx, b.ID)
		require.NoError(t, err)
		require.NoError(t, read.Transition(domain.BaselineAccepted, actor, 3))
		reads[i] = read
	}

	accept := func(read *domain.Baseline) error {
		return uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txBaselines := NewSQLiteBaselineRepo(tx)
			txProjects := NewSQLiteProjectRepo(tx)
			if err := txBaselines.UpdateState(ctx, read, 3); err != nil {
				return err
			}
			return txProjects.SetActiveBaseline(ctx, proj.ID, read.ID)
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := range reads {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// SQLite serializes writers; retry only on busy, never on conflict.
			for {
				err := accept(reads[i])
				if err != nil && !domain.IsConflict(err) && isBusy(err) {
					time.Sleep(time.Millisecond)
					continue
				}
				errs[i] = err
				return
			}
		}(i)
	}
	close(start)
	wg.Wait()

	var winners, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case domain.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, winners, "exactly one acceptance commits")
	assert.Equal(t, 1, conflicts, "the other sees a version conflict")

	got, err := baselines.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BaselineAccepted, got.Status)
	assert.Equal(t, 4, got.Version)

	gotProj, err := projects.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	require.NotNil(t, gotProj.ActiveBaselineID)
	assert.Equal(t, b.ID, *gotProj.ActiveBaselineID)
}

// TestConcurrent_ReadsDuringActualsIngest verifies that grid reads see
// consistent snapshots while an actuals feed streams in.
func TestConcurrent_ReadsDuringActualsIngest(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	projects := NewSQLiteProjectRepo(database)
	actuals := NewSQLiteActualRepo(database)

	proj := testutil.NewTestProject("Ingest")
	require.NoError(t, projects.Create(ctx, proj))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for month := 1; month <= 24; month++ {
			a := domain.Actual{
				ProjectID:     proj.ID,
				CanonicalCode: "LABOR-ENG",
				Month:         month,
				Amount:        testutil.MustDec("950.00"),
				Source:        domain.SourcePayroll,
			}
			if err := actuals.Upsert(ctx, a); err != nil {
				t.Errorf("writer: upsert actual for month %d: %v", month, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				rows, err := actuals.ListByProjects(ctx, []string{proj.ID})
				if err != nil {
					t.Errorf("reader %d: list actuals: %v", reader, err)
					return
				}
				for _, a := range rows {
					if a.ProjectID == "" || a.CanonicalCode == "" {
						t.Errorf("reader %d: got half-written actual row", reader)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	rows, err := actuals.ListByProjects(ctx, []string{proj.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 24)
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
