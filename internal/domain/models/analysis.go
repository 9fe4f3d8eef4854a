package models

// AnalysisResult is the derived, immutable output of divergence analysis.
// Empty venue names together with NoData mean no venue carried a positive price.
type AnalysisResult struct {
	AssetID            string     `json:"asset_id"`
	DisplayName        string     `json:"display_name"`
	CheapestVenue      string     `json:"cheapest_venue,omitempty"`
	MostExpensiveVenue string     `json:"most_expensive_venue,omitempty"`
	CheapestClass      VenueClass `json:"cheapest_class,omitempty"`
	MostExpensiveClass VenueClass `json:"most_expensive_class,omitempty"`
	LowPrice           float64    `json:"low_price"`
	HighPrice          float64    `json:"high_price"`
	DivergencePct      float64    `json:"divergence_pct"`
	NoData             bool       `json:"no_data,omitempty"`
	Supply             *Supply    `json:"supply,omitempty"`
	VolumeTrendPct     *float64   `json:"volume_trend_pct,omitempty"`
	VolatilityPct      *float64   `json:"volatility_pct,omitempty"`
}

// HasExtremes reports whether both reference venues were selected.
func (r AnalysisResult) HasExtremes() bool {
	return r.CheapestVenue != "" && r.MostExpensiveVenue != ""
}
