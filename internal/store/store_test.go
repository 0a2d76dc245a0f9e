package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sales-analyzer/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAndGetRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "exports/q1.csv")
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, model.RunStatusQueued, run.Status)

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, "exports/q1.csv", got.Source)
		assert.Equal(t, model.RunStatusQueued, got.Status)
		assert.Nil(t, got.Stats)
		assert.Nil(t, got.Error)
	})

	t.Run("GetRunNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetRun(context.Background(), "nonexistent-id")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("UpdateRunStatus", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "sales.xlsx")
		require.NoError(t, err)
		require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusNormalizing))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusNormalizing, got.Status)
	})

	t.Run("UpdateRunStatusNotFound", func(t *testing.T) {
		s := newStore(t)

		err := s.UpdateRunStatus(context.Background(), "nonexistent-id", model.RunStatusReading)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("CompleteRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "sales.csv")
		require.NoError(t, err)

		stats := &model.RunStats{
			RowsRead:    10,
			RowsKept:    8,
			RowsDropped: 2,
			Columns:     []string{"date", "product"},
			DurationMs:  12,
		}
		require.NoError(t, s.CompleteRun(ctx, run.ID, stats))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusComplete, got.Status)
		require.NotNil(t, got.Stats)
		assert.Equal(t, *stats, *got.Stats)
	})

	t.Run("FailRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "bad.csv")
		require.NoError(t, err)

		runErr := &model.RunError{Message: "file must contain 'date' column", Kind: model.ErrorKindSchema}
		require.NoError(t, s.FailRun(ctx, run.ID, runErr))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusFailed, got.Status)
		require.NotNil(t, got.Error)
		assert.Equal(t, *runErr, *got.Error)
	})

	t.Run("FailRunNotFound", func(t *testing.T) {
		s := newStore(t)

		err := s.FailRun(context.Background(), "missing", &model.RunError{Message: "x", Kind: model.ErrorKindOther})
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("ListRuns", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateRun(ctx, "a.csv")
		require.NoError(t, err)
		_, err = s.CreateRun(ctx, "b.csv")
		require.NoError(t, err)
		_, err = s.CreateRun(ctx, "a.csv")
		require.NoError(t, err)
		require.NoError(t, s.CompleteRun(ctx, a.ID, &model.RunStats{RowsRead: 1, RowsKept: 1}))

		all, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
		require.NoError(t, err)
		require.Len(t, complete, 1)
		assert.Equal(t, a.ID, complete[0].ID)

		bySource, err := s.ListRuns(ctx, RunFilter{Source: "a.csv"})
		require.NoError(t, err)
		assert.Len(t, bySource, 2)

		limited, err := s.ListRuns(ctx, RunFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, limited, 2)

		offset, err := s.ListRuns(ctx, RunFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, offset, 1)
	})

	t.Run("ListRunsEmpty", func(t *testing.T) {
		s := newStore(t)

		runs, err := s.ListRuns(context.Background(), RunFilter{})
		require.NoError(t, err)
		assert.Empty(t, runs)
	})

	t.Run("Summarize", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, src := range []string{"a.csv", "b.csv", "c.csv"} {
			run, err := s.CreateRun(ctx, src)
			require.NoError(t, err)
			if src != "c.csv" {
				require.NoError(t, s.CompleteRun(ctx, run.ID, &model.RunStats{}))
			}
		}

		sum, err := s.Summarize(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, sum.Total)
		assert.Equal(t, 2, sum.ByStatus[model.RunStatusComplete])
		assert.Equal(t, 1, sum.ByStatus[model.RunStatusQueued])
	})

	t.Run("DeleteRunsBefore", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.CreateRun(ctx, "old.csv")
		require.NoError(t, err)

		n, err := s.DeleteRunsBefore(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		n, err = s.DeleteRunsBefore(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		runs, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		assert.Empty(t, runs)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}
