package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type SupplyRequest struct {
	OnChainCount  int `json:"on_chain_count" validate:"gte=0"`
	OffChainCount int `json:"off_chain_count" validate:"gte=0"`
}

type AnalyzeRequest struct {
	AssetID        string             `json:"asset_id" validate:"required,max=64"`
	DisplayName    string             `json:"display_name" validate:"max=256"`
	VenuePrices    map[string]float64 `json:"venue_prices" validate:"required,min=2,dive,keys,required,endkeys,gte=0"`
	Supply         *SupplyRequest     `json:"supply"`
	VolumeTrendPct *float64           `json:"volume_trend_pct"`
	VolatilityPct  *float64           `json:"volatility_pct" validate:"omitempty,gte=0"`
}

// ToRecord converts the request into a snapshot record.
func (r *AnalyzeRequest) ToRecord() SnapshotRecord {
	rec := SnapshotRecord{
		AssetID:        r.AssetID,
		DisplayName:    r.DisplayName,
		VenuePrices:    r.VenuePrices,
		VolumeTrendPct: r.VolumeTrendPct,
		VolatilityPct:  r.VolatilityPct,
	}
	if r.Supply != nil {
		rec.Supply = &Supply{OnChainCount: r.Supply.OnChainCount, OffChainCount: r.Supply.OffChainCount}
	}
	return rec
}

type ScanRequest struct {
	Sample int `query:"sample" json:"sample" default:"0" validate:"gte=0,lte=1000"`
}
