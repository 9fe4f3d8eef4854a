package analytics

import (
	"fmt"
	"math"
	"strings"

	"RWAPulse/internal/domain/models"
	domsvc "RWAPulse/internal/domain/service"
)

// Normalizer checks the data-model invariants of a snapshot record against the
// venue partition and hands back a trimmed defensive copy.
type Normalizer struct {
	venues models.VenueClasses
}

func NewNormalizer(venues models.VenueClasses) *Normalizer {
	return &Normalizer{venues: venues}
}

// Normalize rejects malformed records. A record whose prices are all zero passes:
// the analyzer turns it into a "no data" result.
func (n *Normalizer) Normalize(rec models.SnapshotRecord) (models.SnapshotRecord, error) {
	id := strings.TrimSpace(rec.AssetID)
	fail := func(field, format string, a ...interface{}) (models.SnapshotRecord, error) {
		return models.SnapshotRecord{}, &RecordError{AssetID: id, Field: field, Reason: fmt.Sprintf(format, a...)}
	}

	if id == "" {
		return fail("asset_id", "is required")
	}
	if len(rec.VenuePrices) == 0 {
		return fail("venue_prices", "is empty")
	}

	out := rec.Clone()
	out.AssetID = id
	out.DisplayName = strings.TrimSpace(rec.DisplayName)
	out.VenuePrices = make(map[string]float64, len(rec.VenuePrices))

	var onChain, offChain int
	for raw, price := range rec.VenuePrices {
		venue := strings.TrimSpace(raw)
		if venue == "" {
			return fail("venue_prices", "empty venue name")
		}
		if _, dup := out.VenuePrices[venue]; dup {
			return fail("venue_prices", "duplicate venue %q", venue)
		}
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return fail("venue_prices", "venue %q price is not finite", venue)
		}
		if price < 0 {
			return fail("venue_prices", "venue %q has negative price %v", venue, price)
		}
		class, ok := n.venues.ClassOf(venue)
		if !ok {
			return fail("venue_prices", "venue %q is not configured", venue)
		}
		if class == models.OnChain {
			onChain++
		} else {
			offChain++
		}
		out.VenuePrices[venue] = price
	}
	if onChain == 0 {
		return fail("venue_prices", "no on-chain venue priced")
	}
	if offChain == 0 {
		return fail("venue_prices", "no off-chain venue priced")
	}

	if s := out.Supply; s != nil && (s.OnChainCount < 0 || s.OffChainCount < 0) {
		return fail("supply", "counts must be non-negative (on=%d off=%d)", s.OnChainCount, s.OffChainCount)
	}
	if v := out.VolumeTrendPct; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return fail("volume_trend_pct", "is not finite")
	}
	if v := out.VolatilityPct; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0) {
		return fail("volatility_pct", "must be finite and non-negative")
	}
	return out, nil
}

var _ domsvc.RecordNormalizer = (*Normalizer)(nil)
