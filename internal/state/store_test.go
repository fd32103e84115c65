package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/starform/internal/testutil"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(testutil.NewTestLogger(t))
	require.NoError(t, s.Open(":memory:"))
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func TestStore_OpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	s := NewStore(nil)
	require.NoError(t, s.Open(path))
	defer s.Close()
	require.NoError(t, s.Migrate())

	version, err := s.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestStore_NotOpened(t *testing.T) {
	s := NewStore(nil)
	_, err := s.CreateRun("orders.csv", "STAR_SCHEMA")
	assert.ErrorContains(t, err, "database not opened")
}

func TestStore_RunLifecycle(t *testing.T) {
	s := openStore(t)

	run, err := s.CreateRun("orders.csv", "STAR_SCHEMA")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero())
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, s.CompleteRun(run.ID, RunStatusCompleted, ""))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "orders.csv", got.SourceFile)
	assert.Equal(t, "STAR_SCHEMA", got.Strategy)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.Empty(t, got.Error)
	require.NotNil(t, got.CompletedAt)
	assert.False(t, got.CompletedAt.Before(got.StartedAt))
}

func TestStore_CompleteRunFailed(t *testing.T) {
	s := openStore(t)

	run, err := s.CreateRun("orders.csv", "STAR_SCHEMA")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(run.ID, RunStatusFailed, "data quality checks failed"))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, "data quality checks failed", got.Error)
}

func TestStore_CompleteRunNotFound(t *testing.T) {
	s := openStore(t)
	err := s.CompleteRun("no-such-run", RunStatusCompleted, "")
	assert.ErrorContains(t, err, "run not found")
}

func TestStore_GetRunNotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.GetRun("no-such-run")
	assert.ErrorContains(t, err, "run not found")
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	s := openStore(t)

	first, err := s.CreateRun("a.csv", "STAR_SCHEMA")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := s.CreateRun("b.csv", "THIRD_NORMAL_FORM")
	require.NoError(t, err)

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	limited, err := s.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}

func TestStore_TableCountsUpsert(t *testing.T) {
	s := openStore(t)

	run, err := s.CreateRun("orders.csv", "STAR_SCHEMA")
	require.NoError(t, err)

	require.NoError(t, s.RecordTableCount(run.ID, TableCount{TableName: "FACT_MAIN", Kind: "FACT", RowCount: 5}))
	require.NoError(t, s.RecordTableCount(run.ID, TableCount{TableName: "DIM_CUSTOMER", Kind: "DIM", RowCount: 3}))
	// Recording the same table again replaces the earlier count.
	require.NoError(t, s.RecordTableCount(run.ID, TableCount{TableName: "FACT_MAIN", Kind: "FACT", RowCount: 7}))

	counts, err := s.TableCounts(run.ID)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, TableCount{TableName: "DIM_CUSTOMER", Kind: "DIM", RowCount: 3}, counts[0])
	assert.Equal(t, TableCount{TableName: "FACT_MAIN", Kind: "FACT", RowCount: 7}, counts[1])
}

func TestStore_ChecksInsertionOrder(t *testing.T) {
	s := openStore(t)

	run, err := s.CreateRun("orders.csv", "STAR_SCHEMA")
	require.NoError(t, err)

	require.NoError(t, s.RecordCheck(run.ID, CheckOutcome{
		TableName: "FACT_MAIN", CheckName: "primary_key_uniqueness", Passed: true, Message: "Primary key is unique",
	}))
	require.NoError(t, s.RecordCheck(run.ID, CheckOutcome{
		TableName: "FACT_MAIN -> DIM_CUSTOMER", CheckName: "foreign_key_integrity", Passed: false, Message: "Found 1 orphaned foreign keys",
	}))

	checks, err := s.Checks(run.ID)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.True(t, checks[0].Passed)
	assert.Equal(t, "primary_key_uniqueness", checks[0].CheckName)
	assert.False(t, checks[1].Passed)
	assert.Equal(t, "Found 1 orphaned foreign keys", checks[1].Message)
}

func TestStore_ChecksEmptyRun(t *testing.T) {
	s := openStore(t)

	run, err := s.CreateRun("orders.csv", "STAR_SCHEMA")
	require.NoError(t, err)

	checks, err := s.Checks(run.ID)
	require.NoError(t, err)
	assert.Empty(t, checks)
}
