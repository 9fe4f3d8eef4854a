package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RWAPulse/internal/domain/models"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("x"), 0))

	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(b))

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)
}

func TestTTLCacheCopiesValue(t *testing.T) {
	c := NewTTLCache()
	v := []byte("abc")
	require.NoError(t, c.SetBytes(context.Background(), "k", v, 0))
	v[0] = 'z'
	b, _, _ := c.GetBytes(context.Background(), "k")
	assert.Equal(t, "abc", string(b))
}

func TestReportCacheRoundTrip(t *testing.T) {
	rc := NewReportCache(NewTTLCache(), "", time.Minute)
	ctx := context.Background()

	_, ok, err := rc.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	started := time.Date(2025, 11, 25, 10, 0, 0, 0, time.UTC)
	rep := &models.ScanReport{
		CycleID:    "cycle-1",
		Provider:   "file",
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Results: []models.ScanResult{
			{AssetID: "PKM-001", Signal: &models.Signal{
				AssetID: "PKM-001", Kind: models.KindArbitrage, DivergencePct: 10.67,
				Arbitrage: &models.ArbitrageDetail{Direction: models.OnChainDiscount, BuyVenue: "Beezie", SellVenue: "eBay"},
			}},
			{AssetID: "BAD", Err: errors.New("boom"), Error: "boom"},
		},
		Counts: map[models.SignalKind]int{models.KindArbitrage: 1},
		Failed: 1,
	}
	require.NoError(t, rc.SaveLatest(ctx, rep))

	got, ok, err := rc.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cycle-1", got.CycleID)
	assert.True(t, got.StartedAt.Equal(started))
	require.Len(t, got.Results, 2)
	assert.Equal(t, models.OnChainDiscount, got.Results[0].Signal.Arbitrage.Direction)
	assert.Nil(t, got.Results[1].Signal)
	assert.Equal(t, "boom", got.Results[1].Error)
	assert.Equal(t, 1, got.Counts[models.KindArbitrage])
	assert.Equal(t, 1, got.Failed)

	assert.Error(t, rc.SaveLatest(ctx, nil))
}
