package models

import "time"

// Supply holds vault/circulation counts for one asset.
type Supply struct {
	OnChainCount  int `json:"on_chain_count" yaml:"on_chain_count"`
	OffChainCount int `json:"off_chain_count" yaml:"off_chain_count"`
}

// SnapshotRecord is one asset's market state at a point in time.
// Providers build it fresh per cycle; it is never mutated after analysis starts.
type SnapshotRecord struct {
	AssetID        string
	DisplayName    string
	VenuePrices    map[string]float64
	Supply         *Supply
	VolumeTrendPct *float64
	// VolatilityPct is informational only; no signal rule reads it.
	VolatilityPct  *float64
	ObservedAt     time.Time
}

// Clone returns a deep copy of the record.
func (r SnapshotRecord) Clone() SnapshotRecord {
	out := r
	if r.VenuePrices != nil {
		out.VenuePrices = make(map[string]float64, len(r.VenuePrices))
		for k, v := range r.VenuePrices {
			out.VenuePrices[k] = v
		}
	}
	if r.Supply != nil {
		s := *r.Supply
		out.Supply = &s
	}
	if r.VolumeTrendPct != nil {
		v := *r.VolumeTrendPct
		out.VolumeTrendPct = &v
	}
	if r.VolatilityPct != nil {
		v := *r.VolatilityPct
		out.VolatilityPct = &v
	}
	return out
}

// Float64Ptr is a small helper for optional numeric fields.
func Float64Ptr(v float64) *float64 { return &v }
