package models

// SignalKind enumerates the mutually exclusive signal variants.
type SignalKind string

const (
	KindArbitrage SignalKind = "arbitrage_opportunity"
	KindScarcity  SignalKind = "scarcity_warning"
	KindLiquidity SignalKind = "liquidity_crisis"
	KindStable    SignalKind = "stable"
)

// AllSignalKinds lists every variant in priority order.
func AllSignalKinds() []SignalKind {
	return []SignalKind{KindArbitrage, KindScarcity, KindLiquidity, KindStable}
}

// Direction says which side of the bridge trades at a discount.
type Direction string

const (
	OnChainDiscount  Direction = "on_chain_discount"
	OffChainDiscount Direction = "off_chain_discount"
	DirectionUnknown Direction = ""
)

type ArbitrageDetail struct {
	Direction Direction `json:"direction"`
	BuyVenue  string    `json:"buy_venue"`
	SellVenue string    `json:"sell_venue"`
}

type ScarcityDetail struct {
	OnChainCount  int `json:"on_chain_count"`
	OffChainCount int `json:"off_chain_count"`
	MinCount      int `json:"min_count"`
}

type LiquidityDetail struct {
	VolumeTrendPct float64 `json:"volume_trend_pct"`
	DropPct        float64 `json:"drop_pct"`
}

// Signal is the single classification verdict for one asset in one cycle.
// Exactly one of Arbitrage, Scarcity, Liquidity is set for the matching Kind;
// none is set for KindStable.
type Signal struct {
	AssetID            string           `json:"asset_id"`
	DisplayName        string           `json:"display_name"`
	Kind               SignalKind       `json:"kind"`
	DivergencePct      float64          `json:"divergence_pct"`
	CheapestVenue      string           `json:"cheapest_venue,omitempty"`
	MostExpensiveVenue string           `json:"most_expensive_venue,omitempty"`
	LowPrice           float64          `json:"low_price"`
	HighPrice          float64          `json:"high_price"`
	NoData             bool             `json:"no_data,omitempty"`
	Watch              bool             `json:"watch,omitempty"`
	VolatilityPct      *float64         `json:"volatility_pct,omitempty"`
	Arbitrage          *ArbitrageDetail `json:"arbitrage,omitempty"`
	Scarcity           *ScarcityDetail  `json:"scarcity,omitempty"`
	Liquidity          *LiquidityDetail `json:"liquidity,omitempty"`
}
