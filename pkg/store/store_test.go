package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poly-watch/pkg/polymarket"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fp(v float64) *float64 { return &v }

func TestSaveAndLoadSnapshot(t *testing.T) {
	s := testStore(t)

	snap := &polymarket.Snapshot{
		RequestedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Results: []polymarket.WalletResult{
			{Address: "0xaaa", Positions: []polymarket.Position{{Slug: "m1", Value: fp(42)}}},
			{Address: "0xbbb", Error: "lookup failed"},
		},
	}

	id, err := s.SaveSnapshot(snap)
	require.NoError(t, err)
	assert.Positive(t, id)

	records, err := s.RecentSnapshots(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].WalletCount)
	assert.Equal(t, 1, records[0].ErrorCount)

	snaps, err := s.LoadSnapshots(10)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	require.Len(t, snaps[0].Results, 2)
	assert.Equal(t, "lookup failed", snaps[0].Results[1].Error)
	require.NotNil(t, snaps[0].Results[0].Positions[0].Value)
	assert.Equal(t, 42.0, *snaps[0].Results[0].Positions[0].Value)
}

func TestSaveSnapshotRecordsAlerts(t *testing.T) {
	s := testStore(t)

	_, err := s.SaveSnapshot(&polymarket.Snapshot{
		RequestedAt: time.Now().UTC(),
		Results: []polymarket.WalletResult{
			{Address: "0xaaa"},
			{Address: "0xbbb", Error: "rate limited"},
		},
	})
	require.NoError(t, err)

	alerts, err := s.RecentAlerts(10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "0xbbb", alerts[0].Address)
	assert.Equal(t, "rate limited", alerts[0].Message)
	assert.NotEmpty(t, alerts[0].ID)
}

func TestRecentSnapshotsNewestFirst(t *testing.T) {
	s := testStore(t)

	t0 := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.SaveSnapshot(&polymarket.Snapshot{
			RequestedAt: t0.Add(time.Duration(i) * time.Minute),
			Results:     []polymarket.WalletResult{{Address: "0xaaa"}},
		})
		require.NoError(t, err)
	}

	records, err := s.RecentSnapshots(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].RequestedAt.After(records[1].RequestedAt))
}

func TestWatchlistUpsert(t *testing.T) {
	s := testStore(t)

	id1, err := s.UpsertWatchlist("whales", []string{"0xaaa", "0xbbb"})
	require.NoError(t, err)

	id2, err := s.UpsertWatchlist("whales", []string{"0xccc"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "same name updates in place")

	lists, err := s.GetWatchlists()
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, []string{"0xccc"}, lists[0].Addresses)
}

func TestStats(t *testing.T) {
	s := testStore(t)

	_, err := s.SaveSnapshot(&polymarket.Snapshot{
		RequestedAt: time.Now().UTC(),
		Results:     []polymarket.WalletResult{{Address: "0xaaa", Error: "x"}},
	})
	require.NoError(t, err)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["snapshots"])
	assert.Equal(t, int64(1), stats["fetch_alerts"])
	assert.Equal(t, int64(0), stats["watchlists"])
}
