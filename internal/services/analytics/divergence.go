package analytics

import (
	"sort"

	"RWAPulse/internal/domain/models"
	domsvc "RWAPulse/internal/domain/service"
)

// DivergenceAnalyzer picks the global price extremes across every venue of a record
// and measures the relative gap between them. A zero-priced venue still competes
// for cheapest; it forces the gap to 0.
type DivergenceAnalyzer struct {
	venues models.VenueClasses
}

func NewDivergenceAnalyzer(venues models.VenueClasses) *DivergenceAnalyzer {
	return &DivergenceAnalyzer{venues: venues}
}

// Analyze is pure: same record, same result.
// Ties on price go to the lexicographically smallest venue name, for both extremes.
func (a *DivergenceAnalyzer) Analyze(rec models.SnapshotRecord) models.AnalysisResult {
	res := models.AnalysisResult{
		AssetID:        rec.AssetID,
		DisplayName:    rec.DisplayName,
		Supply:         rec.Supply,
		VolumeTrendPct: rec.VolumeTrendPct,
		VolatilityPct:  rec.VolatilityPct,
	}

	names := make([]string, 0, len(rec.VenuePrices))
	for name := range rec.VenuePrices {
		names = append(names, name)
	}
	sort.Strings(names)

	anyPositive := false
	for _, name := range names {
		p := rec.VenuePrices[name]
		if p > 0 {
			anyPositive = true
		}
		// strict comparisons keep the first (smallest) name on ties
		if res.CheapestVenue == "" || p < res.LowPrice {
			res.CheapestVenue, res.LowPrice = name, p
		}
		if res.MostExpensiveVenue == "" || p > res.HighPrice {
			res.MostExpensiveVenue, res.HighPrice = name, p
		}
	}

	if !anyPositive {
		return models.AnalysisResult{
			AssetID:        rec.AssetID,
			DisplayName:    rec.DisplayName,
			Supply:         rec.Supply,
			VolumeTrendPct: rec.VolumeTrendPct,
		VolatilityPct:  rec.VolatilityPct,
			NoData:         true,
		}
	}

	res.CheapestClass, _ = a.venues.ClassOf(res.CheapestVenue)
	res.MostExpensiveClass, _ = a.venues.ClassOf(res.MostExpensiveVenue)
	// a free venue leaves the ratio undefined; report no gap rather than divide by zero
	if res.LowPrice > 0 {
		res.DivergencePct = (res.HighPrice - res.LowPrice) / res.LowPrice * 100
	}
	return res
}

var _ domsvc.Analyzer = (*DivergenceAnalyzer)(nil)
