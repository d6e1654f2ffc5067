package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/canonguard/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistoryDB(t *testing.T) *HistoryDB {
	t.Helper()
	h, err := NewHistoryDB(filepath.Join(t.TempDir(), "nested", "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestHistoryDB_RunLifecycle(t *testing.T) {
	h := newTestHistoryDB(t)
	ctx := t.Context()
	start := time.UnixMilli(1714566600000)

	require.NoError(t, h.RecordRunStart(ctx, "run-1", "example.com", 3, start))

	runs, err := h.LastRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusStarted, runs[0].Status)
	assert.Nil(t, runs[0].EndTime)

	summary := RunSummary{Total: 3, Matches: 2, Mismatches: 1}
	paths := []string{"reports/a.csv", "reports/a.json"}
	require.NoError(t, h.CompleteRun(ctx, "run-1", start.Add(time.Minute), RunStatusCompleted, summary, paths))

	runs, err = h.LastRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, "example.com", run.Source)
	assert.Equal(t, 3, run.URLCount)
	assert.Equal(t, summary, run.Summary)
	assert.Equal(t, paths, run.ReportPaths)
	assert.True(t, run.StartTime.Equal(start))
	require.NotNil(t, run.EndTime)
	assert.True(t, run.EndTime.Equal(start.Add(time.Minute)))
	assert.InDelta(t, 66.666, run.Summary.MatchRate(), 0.01)
}

func TestHistoryDB_CompleteUnknownRun(t *testing.T) {
	h := newTestHistoryDB(t)
	err := h.CompleteRun(t.Context(), "missing", time.Now(), RunStatusFailed, RunSummary{}, nil)
	assert.ErrorContains(t, err, "run missing not found")
}

func TestHistoryDB_SavePageRecords(t *testing.T) {
	h := newTestHistoryDB(t)
	ctx := t.Context()
	require.NoError(t, h.RecordRunStart(ctx, "run-1", "manual", 2, time.Now()))

	records := []models.PageRecord{
		{
			URL:                 "https://example.com/a",
			FinalURL:            models.StringPtr("https://example.com/a"),
			CanonicalURL:        models.StringPtr("https://example.com/a"),
			Status:              models.StatusMatch,
			ResponseTimeSeconds: models.Float64Ptr(0.25),
			HTTPStatus:          models.IntPtr(200),
		},
		{
			URL:         "https://example.com/b",
			Status:      models.StatusError,
			ErrorDetail: models.StringPtr("Request failed: timeout"),
		},
	}
	require.NoError(t, h.SavePageRecords(ctx, "run-1", records))

	stored, err := h.PageRecords(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, records, stored)

	other, err := h.PageRecords(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestHistoryDB_LastRunsOrderAndPrevious(t *testing.T) {
	h := newTestHistoryDB(t)
	ctx := t.Context()
	base := time.UnixMilli(1714566600000)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, h.RecordRunStart(ctx, id, "example.com", 1, base.Add(time.Duration(i)*time.Hour)))
	}
	require.NoError(t, h.CompleteRun(ctx, "r1", base.Add(time.Minute), RunStatusCompleted, RunSummary{Total: 1, Matches: 1}, nil))
	require.NoError(t, h.CompleteRun(ctx, "r2", base.Add(time.Hour+time.Minute), RunStatusFailed, RunSummary{}, nil))

	runs, err := h.LastRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].RunID)
	assert.Equal(t, "r2", runs[1].RunID)

	prev, err := h.PreviousCompletedRun(ctx, "r3")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "r1", prev.RunID)

	prev, err = h.PreviousCompletedRun(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, prev)
}
