package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
venues:
  on_chain: [Beezie, CollectorCrypt]
  off_chain: [eBay, TCGPlayer, Cardmarket]
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10.0, c.Thresholds.DivergenceCriticalPct)
	assert.Equal(t, 10, c.Thresholds.ScarcityMinCount)
	assert.Equal(t, -20.0, c.Thresholds.LiquidityDropPct)
	assert.Equal(t, 10*time.Second, c.Monitor.Interval)
	assert.Equal(t, 4, c.Monitor.Workers)
	assert.Equal(t, "file", c.Provider.Type)
	assert.Equal(t, 7, c.Provider.Synthetic.WindowDays)
	assert.True(t, c.Render.Enabled)
	assert.False(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"Beezie", "CollectorCrypt"}, c.Venues.OnChain)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal + `
thresholds:
  divergence_critical_pct: 15
  scarcity_min_count: 5
render:
  enabled: false
monitor:
  interval: 2m
`))
	require.NoError(t, err)
	assert.Equal(t, 15.0, c.Thresholds.DivergenceCriticalPct)
	assert.Equal(t, 5, c.Thresholds.ScarcityMinCount)
	assert.False(t, c.Render.Enabled)
	assert.Equal(t, 2*time.Minute, c.Monitor.Interval)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"no venues":        `environment: test`,
		"bad provider":     minimal + "provider:\n  type: carrier-pigeon\n",
		"empty watchlist":  minimal + "provider:\n  type: synthetic\n",
		"http without url": minimal + "provider:\n  type: http\n",
		"kafka no brokers": minimal + "kafka:\n  enabled: true\n",
		"bad log level":    minimal + "logging:\n  level: loud\n",
		"bad yaml":         "venues: [",
		"venue in both":    "venues:\n  on_chain: [Beezie]\n  off_chain: [eBay, Beezie]\n",
		"zero critical":    minimal + "thresholds:\n  divergence_critical_pct: 0\n",
		"positive drop":    minimal + "thresholds:\n  liquidity_drop_pct: 5\n",
		"watch above crit": minimal + "thresholds:\n  divergence_watch_pct: 12\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseSyntheticWatchlist(t *testing.T) {
	c, err := Parse([]byte(minimal + `
provider:
  type: synthetic
  synthetic:
    seed: 7
    watchlist:
      - id: PKM-001
        name: Charizard
        base_price: 420
`))
	require.NoError(t, err)
	require.Len(t, c.Provider.Synthetic.Watchlist, 1)
	assert.Equal(t, 1, c.Provider.Synthetic.Watchlist[0].VolatilityProfile)
	assert.Equal(t, int64(7), c.Provider.Synthetic.Seed)
}

func TestLoadWithEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	t.Setenv("RWAPULSE_PORT", "9090")
	t.Setenv("RWAPULSE_SNAPSHOT_PATH", "/tmp/snap.json")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "/tmp/snap.json", c.Provider.File.Path)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadShippedConfig(t *testing.T) {
	c, err := Load("../../config/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"Beezie", "CollectorCrypt"}, c.Venues.OnChain)
	assert.Equal(t, []string{"eBay", "TCGPlayer", "Cardmarket"}, c.Venues.OffChain)
	assert.Equal(t, 10.0, c.Thresholds.DivergenceCriticalPct)
	assert.Len(t, c.Provider.Synthetic.Watchlist, 3)
	assert.Equal(t, "rwapulse:latest_report", c.Cache.Redis.Key)
}
