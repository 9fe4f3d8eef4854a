package repository

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"RWAPulse/internal/domain/models"
	domrepo "RWAPulse/internal/domain/repository"
	"RWAPulse/internal/services/features"
)

// SyntheticAsset is one watchlist entry for the generator.
type SyntheticAsset struct {
	ID                string
	Name              string
	BasePrice         float64
	VolatilityProfile int // 1 calm, 2 normal, 3 wild
	OnChainSupply     int
	OffChainSupply    int
}

// daily price volatility per profile
var profileVol = map[int]float64{1: 0.02, 2: 0.05, 3: 0.10}

// SyntheticProvider fabricates a plausible market each cycle: a short random
// walk of on-chain price and volume per asset with a drifting off-chain price,
// venue quotes scattered around the latest on-chain price, and the volume trend
// and off-chain volatility of the window.
type SyntheticProvider struct {
	assets     []SyntheticAsset
	venues     []string
	windowDays int
	maxDrift   float64
	mu         sync.Mutex
	rng        *rand.Rand
	now        func() time.Time
}

type SyntheticOption func(*SyntheticProvider)

func WithSyntheticSeed(seed int64) SyntheticOption {
	return func(p *SyntheticProvider) {
		if seed != 0 {
			p.rng = rand.New(rand.NewSource(seed))
		}
	}
}

func WithWindowDays(n int) SyntheticOption {
	return func(p *SyntheticProvider) {
		if n >= 2 {
			p.windowDays = n
		}
	}
}

// WithMaxDrift bounds how far a venue quote may sit from the on-chain price, as a fraction.
func WithMaxDrift(f float64) SyntheticOption {
	return func(p *SyntheticProvider) {
		if f >= 0 && f < 1 {
			p.maxDrift = f
		}
	}
}

func WithSyntheticClock(now func() time.Time) SyntheticOption {
	return func(p *SyntheticProvider) {
		p.now = now
	}
}

func NewSyntheticProvider(assets []SyntheticAsset, venues models.VenueClasses, opts ...SyntheticOption) *SyntheticProvider {
	names := append(venues.Venues(models.OnChain), venues.Venues(models.OffChain)...)
	p := &SyntheticProvider{
		assets:     append([]SyntheticAsset(nil), assets...),
		venues:     names,
		windowDays: 7,
		maxDrift:   0.15,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *SyntheticProvider) Name() string { return "synthetic" }

func (p *SyntheticProvider) Fetch(ctx context.Context) ([]models.SnapshotRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	observed := p.now()
	out := make([]models.SnapshotRecord, 0, len(p.assets))
	for _, a := range p.assets {
		window := p.walk(a)
		last := window[len(window)-1].OnChainPrice

		prices := make(map[string]float64, len(p.venues))
		for _, v := range p.venues {
			drift := (p.rng.Float64()*2 - 1) * p.maxDrift
			prices[v] = features.Round2(last * (1 + drift))
		}

		rec := models.SnapshotRecord{
			AssetID:     a.ID,
			DisplayName: a.Name,
			VenuePrices: prices,
			Supply:      &models.Supply{OnChainCount: a.OnChainSupply, OffChainCount: a.OffChainSupply},
			ObservedAt:  observed,
		}
		if trend, ok := features.VolumeTrendPct(window); ok {
			rec.VolumeTrendPct = models.Float64Ptr(features.Round2(trend))
		}
		if vol, ok := features.VolatilityPct(window); ok {
			rec.VolatilityPct = models.Float64Ptr(features.Round2(vol))
		}
		out = append(out, rec)
	}
	return out, nil
}

// walk builds the history window; callers hold p.mu.
func (p *SyntheticProvider) walk(a SyntheticAsset) []features.DailyPoint {
	vol, ok := profileVol[a.VolatilityProfile]
	if !ok {
		vol = profileVol[1]
	}
	price := a.BasePrice
	volume := 50 + p.rng.Float64()*100

	window := make([]features.DailyPoint, p.windowDays)
	for d := range window {
		price = math.Max(price*(1+p.rng.NormFloat64()*vol), a.BasePrice*0.1)
		volume = math.Max(volume*(1+p.rng.NormFloat64()*0.25), 1)
		// off-chain reacts faster: its own drift around the day's on-chain price
		drift := (p.rng.Float64()*2 - 1) * p.maxDrift
		window[d] = features.DailyPoint{
			Day:           d,
			OnChainPrice:  price,
			OffChainPrice: features.Round2(price * (1 + drift)),
			OnChainVol:    volume,
		}
	}
	return window
}

var _ domrepo.SnapshotProvider = (*SyntheticProvider)(nil)
