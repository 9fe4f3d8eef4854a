package repository

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"RWAPulse/internal/domain/models"
	"RWAPulse/pkg/util"
)

// snapshotDocument is the on-disk/over-the-wire snapshot format shared by the
// file and http providers.
type snapshotDocument struct {
	SnapshotDate string         `json:"snapshot_date" yaml:"snapshot_date"`
	Cards        []snapshotCard `json:"cards" yaml:"cards"`
}

type snapshotCard struct {
	ID             string             `json:"id" yaml:"id"`
	Name           string             `json:"name" yaml:"name"`
	MarketPrices   map[string]float64 `json:"market_prices" yaml:"market_prices"`
	SupplyInfo     *models.Supply     `json:"supply_info,omitempty" yaml:"supply_info,omitempty"`
	VolumeTrendPct *float64           `json:"volume_trend_pct,omitempty" yaml:"volume_trend_pct,omitempty"`
	VolatilityPct  *float64           `json:"volatility_pct,omitempty" yaml:"volatility_pct,omitempty"`
}

type docFormat int

const (
	formatJSON docFormat = iota
	formatYAML
)

func formatForPath(path string) docFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// decodeSnapshot parses a document into records. Structural problems fail the
// whole document; per-record rule violations are left to the scanner.
func decodeSnapshot(raw []byte, f docFormat, fallback time.Time) ([]models.SnapshotRecord, error) {
	var doc snapshotDocument
	var err error
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(raw, &doc)
	default:
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	observed := util.ParseTimeDefault(doc.SnapshotDate, fallback)
	out := make([]models.SnapshotRecord, 0, len(doc.Cards))
	for _, c := range doc.Cards {
		rec := models.SnapshotRecord{
			AssetID:        c.ID,
			DisplayName:    c.Name,
			VenuePrices:    c.MarketPrices,
			Supply:         c.SupplyInfo,
			VolumeTrendPct: c.VolumeTrendPct,
			VolatilityPct:  c.VolatilityPct,
			ObservedAt:     observed,
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

// sampler picks n random records per call; n <= 0 or n >= len keeps everything.
type sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
	n   int
}

func newSampler(n int, seed int64) *sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &sampler{n: n, rng: rand.New(rand.NewSource(seed))}
}

func (s *sampler) pick(recs []models.SnapshotRecord, n int) []models.SnapshotRecord {
	if n <= 0 || n >= len(recs) {
		return recs
	}
	s.mu.Lock()
	idx := s.rng.Perm(len(recs))[:n]
	s.mu.Unlock()

	out := make([]models.SnapshotRecord, 0, n)
	for _, i := range idx {
		out = append(out, recs[i])
	}
	return out
}
