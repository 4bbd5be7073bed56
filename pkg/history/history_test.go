package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/history"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()

	s, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func doc(file string, level report.Level) report.Document {
	r := report.New(file, false)

	switch level {
	case report.LevelFail:
		r.Fail("A1: Empty MCAP", "No messages found")
	case report.LevelWarn:
		r.Warn("B2: No episode metadata", "Skip episode range check")
	case report.LevelPass:
		r.Pass("A1: MCAP readable", "10 messages, 1 chunks")
	}

	r.Finalize()

	return r.Document()
}

func TestRecordAndList(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	files := []struct {
		file  string
		level report.Level
	}{
		{"a.mcap", report.LevelPass},
		{"b.mcap", report.LevelWarn},
		{"c.mcap", report.LevelFail},
	}

	for i, f := range files {
		s.SetClock(func() time.Time { return base.Add(time.Duration(i) * time.Minute) })

		run, err := s.Record(ctx, doc(f.file, f.level), i == 2, 1500*time.Millisecond+1234*time.Nanosecond)
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
	}

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, "c.mcap", runs[0].File)
	assert.Equal(t, report.LevelFail, runs[0].Level)
	assert.Equal(t, report.Summary{Failed: 1}, runs[0].Summary)
	assert.True(t, runs[0].Strict)
	assert.Equal(t, 1500*time.Millisecond+1234*time.Nanosecond, runs[0].Duration, "sub-millisecond precision survives")
	assert.Equal(t, base.Add(2*time.Minute), runs[0].CreatedAt)
	assert.Equal(t, "a.mcap", runs[2].File)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestReport(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	run, err := s.Record(ctx, doc("a.mcap", report.LevelWarn), false, time.Second)
	require.NoError(t, err)

	data, err := s.Report(ctx, run.ID)
	require.NoError(t, err)
	require.NoError(t, report.Validate(data))

	got, err := report.DecodeJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "a.mcap", got.File)
	assert.Equal(t, report.LevelWarn, got.Level)

	_, err = s.Report(ctx, "nope")
	require.ErrorIs(t, err, history.ErrRunNotFound)
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := history.Open(ctx, path)
	require.NoError(t, err)

	_, err = s.Record(ctx, doc("a.mcap", report.LevelPass), false, 0)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = history.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
