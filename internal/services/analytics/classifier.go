package analytics

import (
	"math"

	"RWAPulse/internal/domain/models"
	domsvc "RWAPulse/internal/domain/service"
)

// ThresholdConfig drives the classification chain.
type ThresholdConfig struct {
	DivergenceCriticalPct float64 `json:"divergence_critical_pct"`
	DivergenceWatchPct    float64 `json:"divergence_watch_pct"`
	ScarcityMinCount      int     `json:"scarcity_min_count"`
	LiquidityDropPct      float64 `json:"liquidity_drop_pct"`
}

// Validate reports the first invalid option.
func (t ThresholdConfig) Validate() error {
	crit := t.DivergenceCriticalPct
	if math.IsNaN(crit) || math.IsInf(crit, 0) || crit <= 0 {
		return &ConfigError{Option: "divergence_critical_pct", Reason: "must be a finite value > 0"}
	}
	watch := t.DivergenceWatchPct
	if math.IsNaN(watch) || watch < 0 || (watch > 0 && watch >= crit) {
		return &ConfigError{Option: "divergence_watch_pct", Reason: "must be 0 (off) or in (0, divergence_critical_pct)"}
	}
	if t.ScarcityMinCount < 0 {
		return &ConfigError{Option: "scarcity_min_count", Reason: "must be >= 0"}
	}
	drop := t.LiquidityDropPct
	if math.IsNaN(drop) || drop >= 0 {
		return &ConfigError{Option: "liquidity_drop_pct", Reason: "must be < 0"}
	}
	return nil
}

// SignalClassifier applies the ordered rule chain:
// divergence, then scarcity, then liquidity, else stable. First match wins.
type SignalClassifier struct {
	th ThresholdConfig
}

// NewSignalClassifier fails fast on an invalid config so no rule is silently disabled.
func NewSignalClassifier(th ThresholdConfig) (*SignalClassifier, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &SignalClassifier{th: th}, nil
}

// Thresholds returns the config in effect.
func (c *SignalClassifier) Thresholds() ThresholdConfig { return c.th }

func (c *SignalClassifier) Classify(res models.AnalysisResult) models.Signal {
	sig := models.Signal{
		AssetID:            res.AssetID,
		DisplayName:        res.DisplayName,
		DivergencePct:      res.DivergencePct,
		CheapestVenue:      res.CheapestVenue,
		MostExpensiveVenue: res.MostExpensiveVenue,
		LowPrice:           res.LowPrice,
		HighPrice:          res.HighPrice,
		NoData:             res.NoData,
		VolatilityPct:      res.VolatilityPct,
	}

	switch {
	case math.Abs(res.DivergencePct) >= c.th.DivergenceCriticalPct:
		sig.Kind = models.KindArbitrage
		sig.Arbitrage = &models.ArbitrageDetail{
			Direction: directionOf(res.CheapestClass),
			BuyVenue:  res.CheapestVenue,
			SellVenue: res.MostExpensiveVenue,
		}
	case res.Supply != nil && res.Supply.OnChainCount < c.th.ScarcityMinCount:
		sig.Kind = models.KindScarcity
		sig.Scarcity = &models.ScarcityDetail{
			OnChainCount:  res.Supply.OnChainCount,
			OffChainCount: res.Supply.OffChainCount,
			MinCount:      c.th.ScarcityMinCount,
		}
	case res.VolumeTrendPct != nil && *res.VolumeTrendPct <= c.th.LiquidityDropPct:
		sig.Kind = models.KindLiquidity
		sig.Liquidity = &models.LiquidityDetail{
			VolumeTrendPct: *res.VolumeTrendPct,
			DropPct:        c.th.LiquidityDropPct,
		}
	default:
		sig.Kind = models.KindStable
		sig.Watch = c.th.DivergenceWatchPct > 0 && res.DivergencePct >= c.th.DivergenceWatchPct
	}
	return sig
}

func directionOf(cheapest models.VenueClass) models.Direction {
	switch cheapest {
	case models.OnChain:
		return models.OnChainDiscount
	case models.OffChain:
		return models.OffChainDiscount
	default:
		return models.DirectionUnknown
	}
}

var _ domsvc.Classifier = (*SignalClassifier)(nil)
