package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	hands := []Hand{
		{MatchID: "m1", HandNumber: 2, Reward: -4, Strategy: "equity", RecordedAt: base.Add(2 * time.Second)},
		{MatchID: "m1", HandNumber: 1, Reward: 6, Won: true, Strategy: "equity", RecordedAt: base.Add(time.Second)},
		{MatchID: "m2", HandNumber: 1, Reward: 2.5, Won: true, Strategy: "search", RecordedAt: base.Add(time.Hour)},
	}
	for _, h := range hands {
		require.NoError(t, j.Record(ctx, h))
	}

	got, err := j.Hands(ctx, "m1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, hands[1], got[0], "hands come back in hand order")
	assert.Equal(t, hands[0], got[1])

	limited, err := j.Hands(ctx, "m1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)

	require.NoError(t, j.Record(ctx, Hand{MatchID: "m", HandNumber: 7, Reward: 3, Won: true}))
	require.NoError(t, j.Record(ctx, Hand{MatchID: "m", HandNumber: 7, Reward: -99}))

	got, err := j.Hands(ctx, "m", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3.0, got[0].Reward)
	assert.False(t, got[0].RecordedAt.IsZero(), "missing timestamps are filled in")
}

func TestRecordRequiresMatchID(t *testing.T) {
	j := openTemp(t)
	assert.Error(t, j.Record(context.Background(), Hand{HandNumber: 1}))
}

func TestSummaries(t *testing.T) {
	ctx := context.Background()
	j := openTemp(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, r := range []float64{5, -2, -1, 4} {
		require.NoError(t, j.Record(ctx, Hand{
			MatchID: "old", HandNumber: i + 1, Reward: r, Won: r > 0,
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, j.Record(ctx, Hand{MatchID: "new", HandNumber: 1, Reward: -1, RecordedAt: base.Add(time.Hour)}))

	all, err := j.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].MatchID)

	old, err := j.Summary(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, 4, old.Hands)
	assert.Equal(t, 2, old.Won)
	assert.InDelta(t, 6.0, old.TotalReward, 1e-9)
	assert.InDelta(t, 0.5, old.WinRate(), 1e-9)
	assert.Equal(t, base, old.FirstHand)
	assert.Equal(t, base.Add(3*time.Minute), old.LastHand)

	missing, err := j.Summary(ctx, "nope")
	require.NoError(t, err)
	assert.Zero(t, missing.Hands)
	assert.Zero(t, missing.WinRate())
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
