package features

import "math"

// DailyPoint is one day of a short on-chain/off-chain history window.
type DailyPoint struct {
	Day           int
	OnChainPrice  float64
	OffChainPrice float64
	OnChainVol    float64
}

// VolumeTrendPct compares the latest on-chain volume with the window mean:
// (latest - mean) / mean * 100. Returns (0, false) if the window is empty or the mean is 0.
func VolumeTrendPct(window []DailyPoint) (float64, bool) {
	if len(window) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, p := range window {
		sum += p.OnChainVol
	}
	mean := sum / float64(len(window))
	if mean <= 0 {
		return 0, false
	}
	latest := window[len(window)-1].OnChainVol
	return (latest - mean) / mean * 100, true
}

// VolatilityPct is the coefficient of variation of the off-chain price over the
// window: population stddev / mean * 100. Returns (0, false) if the window is
// empty or the mean is not positive.
func VolatilityPct(window []DailyPoint) (float64, bool) {
	if len(window) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, p := range window {
		sum += p.OffChainPrice
	}
	n := float64(len(window))
	mean := sum / n
	if mean <= 0 {
		return 0, false
	}
	ss := 0.0
	for _, p := range window {
		d := p.OffChainPrice - mean
		ss += d * d
	}
	return math.Sqrt(ss/n) / mean * 100, true
}

// Round2 rounds to two decimals, the precision the price feeds publish.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
