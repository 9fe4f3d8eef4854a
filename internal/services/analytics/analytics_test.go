package analytics

import (
	"errors"
	"math"
	"testing"

	"RWAPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVenues(t *testing.T) models.VenueClasses {
	t.Helper()
	vc, err := models.NewVenueClasses(
		[]string{"Beezie", "CollectorCrypt"},
		[]string{"eBay", "TCGPlayer", "Cardmarket"},
	)
	require.NoError(t, err)
	return vc
}

func testThresholds() ThresholdConfig {
	return ThresholdConfig{
		DivergenceCriticalPct: 10,
		ScarcityMinCount:      5,
		LiquidityDropPct:      -20,
	}
}

func mustClassifier(t *testing.T, th ThresholdConfig) *SignalClassifier {
	t.Helper()
	c, err := NewSignalClassifier(th)
	require.NoError(t, err)
	return c
}

func TestAnalyzeScenarioA(t *testing.T) {
	a := NewDivergenceAnalyzer(testVenues(t))
	res := a.Analyze(models.SnapshotRecord{
		AssetID:     "PKM-001",
		VenuePrices: map[string]float64{"Beezie": 750, "CollectorCrypt": 780, "eBay": 830},
	})

	assert.Equal(t, "Beezie", res.CheapestVenue)
	assert.Equal(t, "eBay", res.MostExpensiveVenue)
	assert.Equal(t, models.OnChain, res.CheapestClass)
	assert.Equal(t, models.OffChain, res.MostExpensiveClass)
	assert.InDelta(t, 10.6667, res.DivergencePct, 0.001)
	assert.False(t, res.NoData)

	sig := mustClassifier(t, testThresholds()).Classify(res)
	require.Equal(t, models.KindArbitrage, sig.Kind)
	require.NotNil(t, sig.Arbitrage)
	assert.Equal(t, models.OnChainDiscount, sig.Arbitrage.Direction)
	assert.Equal(t, "Beezie", sig.Arbitrage.BuyVenue)
	assert.Equal(t, "eBay", sig.Arbitrage.SellVenue)
}

func TestAnalyzeOffChainDiscount(t *testing.T) {
	a := NewDivergenceAnalyzer(testVenues(t))
	res := a.Analyze(models.SnapshotRecord{
		AssetID:     "PKM-009",
		VenuePrices: map[string]float64{"Beezie": 1200, "eBay": 900, "TCGPlayer": 1000},
	})
	sig := mustClassifier(t, testThresholds()).Classify(res)
	require.Equal(t, models.KindArbitrage, sig.Kind)
	assert.Equal(t, models.OffChainDiscount, sig.Arbitrage.Direction)
	assert.Equal(t, "eBay", sig.CheapestVenue)
	assert.Equal(t, "Beezie", sig.MostExpensiveVenue)
}

func TestScenarioBScarcity(t *testing.T) {
	a := NewDivergenceAnalyzer(testVenues(t))
	res := a.Analyze(models.SnapshotRecord{
		AssetID:     "PKM-002",
		VenuePrices: map[string]float64{"Beezie": 100, "CollectorCrypt": 100, "eBay": 100},
		Supply:      &models.Supply{OnChainCount: 3, OffChainCount: 40},
	})
	assert.Equal(t, 0.0, res.DivergencePct)

	sig := mustClassifier(t, testThresholds()).Classify(res)
	require.Equal(t, models.KindScarcity, sig.Kind)
	require.NotNil(t, sig.Scarcity)
	assert.Equal(t, 3, sig.Scarcity.OnChainCount)
	assert.Equal(t, 40, sig.Scarcity.OffChainCount)
	assert.Equal(t, 5, sig.Scarcity.MinCount)
}

func TestScenarioCNoData(t *testing.T) {
	vc, err := models.NewVenueClasses([]string{"A"}, []string{"B"})
	require.NoError(t, err)
	res := NewDivergenceAnalyzer(vc).Analyze(models.SnapshotRecord{
		AssetID:     "X",
		VenuePrices: map[string]float64{"A": 0, "B": 0},
	})
	assert.True(t, res.NoData)
	assert.Equal(t, 0.0, res.DivergencePct)
	assert.Empty(t, res.CheapestVenue)
	assert.Empty(t, res.MostExpensiveVenue)

	sig := mustClassifier(t, testThresholds()).Classify(res)
	assert.Equal(t, models.KindStable, sig.Kind)
	assert.True(t, sig.NoData)
}

func TestZeroPricedVenueCompetesWithoutDivision(t *testing.T) {
	res := NewDivergenceAnalyzer(testVenues(t)).Analyze(models.SnapshotRecord{
		AssetID:     "PKM-003",
		VenuePrices: map[string]float64{"Beezie": 0, "eBay": 100, "TCGPlayer": 150},
	})
	assert.False(t, res.NoData)
	assert.Equal(t, "Beezie", res.CheapestVenue)
	assert.Equal(t, models.OnChain, res.CheapestClass)
	assert.Equal(t, "TCGPlayer", res.MostExpensiveVenue)
	assert.Equal(t, 0.0, res.LowPrice)
	assert.Equal(t, 0.0, res.DivergencePct)

	sig := mustClassifier(t, testThresholds()).Classify(res)
	assert.Equal(t, models.KindStable, sig.Kind)
}

func TestVolatilityIsInformational(t *testing.T) {
	res := NewDivergenceAnalyzer(testVenues(t)).Analyze(models.SnapshotRecord{
		AssetID:       "V",
		VenuePrices:   map[string]float64{"Beezie": 100, "eBay": 102},
		VolatilityPct: models.Float64Ptr(48.5),
	})
	require.NotNil(t, res.VolatilityPct)

	sig := mustClassifier(t, testThresholds()).Classify(res)
	assert.Equal(t, models.KindStable, sig.Kind)
	require.NotNil(t, sig.VolatilityPct)
	assert.Equal(t, 48.5, *sig.VolatilityPct)
}

func TestUniformPricesAreStable(t *testing.T) {
	a := NewDivergenceAnalyzer(testVenues(t))
	c := mustClassifier(t, testThresholds())
	for _, p := range []float64{0.01, 1, 120, 5275000} {
		res := a.Analyze(models.SnapshotRecord{
			AssetID:        "U",
			VenuePrices:    map[string]float64{"Beezie": p, "CollectorCrypt": p, "eBay": p, "TCGPlayer": p},
			Supply:         &models.Supply{OnChainCount: 50, OffChainCount: 50},
			VolumeTrendPct: models.Float64Ptr(2.5),
		})
		assert.Equal(t, 0.0, res.DivergencePct)
		assert.Equal(t, models.KindStable, c.Classify(res).Kind)
	}
}

func TestTieBreakIsLexicographic(t *testing.T) {
	a := NewDivergenceAnalyzer(testVenues(t))
	rec := models.SnapshotRecord{
		AssetID:     "T",
		VenuePrices: map[string]float64{"eBay": 90, "CollectorCrypt": 90, "Beezie": 120, "TCGPlayer": 120},
	}
	for i := 0; i < 50; i++ {
		res := a.Analyze(rec)
		require.Equal(t, "CollectorCrypt", res.CheapestVenue)
		require.Equal(t, "Beezie", res.MostExpensiveVenue)
	}
}

func TestDivergenceNeverNegative(t *testing.T) {
	a := NewDivergenceAnalyzer(testVenues(t))
	cases := []map[string]float64{
		{"Beezie": 10, "eBay": 1},
		{"Beezie": 1, "eBay": 10},
		{"Beezie": 0, "eBay": 0},
		{"Beezie": 3, "eBay": 0},
	}
	for _, prices := range cases {
		res := a.Analyze(models.SnapshotRecord{AssetID: "N", VenuePrices: prices})
		assert.GreaterOrEqual(t, res.DivergencePct, 0.0)
	}
}

func TestPriorityDivergenceBeatsScarcityAndLiquidity(t *testing.T) {
	res := NewDivergenceAnalyzer(testVenues(t)).Analyze(models.SnapshotRecord{
		AssetID:        "P",
		VenuePrices:    map[string]float64{"Beezie": 100, "eBay": 150},
		Supply:         &models.Supply{OnChainCount: 1},
		VolumeTrendPct: models.Float64Ptr(-80),
	})
	sig := mustClassifier(t, testThresholds()).Classify(res)
	assert.Equal(t, models.KindArbitrage, sig.Kind)
	assert.Nil(t, sig.Scarcity)
	assert.Nil(t, sig.Liquidity)
}

func TestLiquidityCrisis(t *testing.T) {
	c := mustClassifier(t, testThresholds())
	res := models.AnalysisResult{AssetID: "L", DivergencePct: 2, VolumeTrendPct: models.Float64Ptr(-20)}
	sig := c.Classify(res)
	require.Equal(t, models.KindLiquidity, sig.Kind)
	assert.Equal(t, -20.0, sig.Liquidity.VolumeTrendPct)

	res.VolumeTrendPct = models.Float64Ptr(-19.99)
	assert.Equal(t, models.KindStable, c.Classify(res).Kind)
}

func TestMissingOptionalFieldsDisableRules(t *testing.T) {
	th := testThresholds()
	th.ScarcityMinCount = 1_000_000
	sig := mustClassifier(t, th).Classify(models.AnalysisResult{AssetID: "M", DivergencePct: 1})
	assert.Equal(t, models.KindStable, sig.Kind)
}

func TestWatchLevel(t *testing.T) {
	th := testThresholds()
	th.DivergenceWatchPct = 5
	c := mustClassifier(t, th)
	assert.True(t, c.Classify(models.AnalysisResult{DivergencePct: 6}).Watch)
	assert.False(t, c.Classify(models.AnalysisResult{DivergencePct: 4}).Watch)
	assert.False(t, c.Classify(models.AnalysisResult{DivergencePct: 12}).Watch)
}

func TestClassifyIsIdempotent(t *testing.T) {
	a := NewDivergenceAnalyzer(testVenues(t))
	c := mustClassifier(t, testThresholds())
	rec := models.SnapshotRecord{
		AssetID:        "I",
		DisplayName:    "Umbreon VMAX Alt Art PSA 10",
		VenuePrices:    map[string]float64{"Beezie": 2850, "CollectorCrypt": 2900, "eBay": 3130, "TCGPlayer": 3150},
		Supply:         &models.Supply{OnChainCount: 35, OffChainCount: 19182},
		VolumeTrendPct: models.Float64Ptr(-4),
	}
	first := c.Classify(a.Analyze(rec))
	second := c.Classify(a.Analyze(rec))
	assert.Equal(t, first, second)
}

func TestThresholdValidation(t *testing.T) {
	bad := []ThresholdConfig{
		{DivergenceCriticalPct: -1, LiquidityDropPct: -20},
		{DivergenceCriticalPct: 0, LiquidityDropPct: -20},
		{DivergenceCriticalPct: math.NaN(), LiquidityDropPct: -20},
		{DivergenceCriticalPct: 10, LiquidityDropPct: 0},
		{DivergenceCriticalPct: 10, LiquidityDropPct: 5},
		{DivergenceCriticalPct: 10, LiquidityDropPct: -20, ScarcityMinCount: -1},
		{DivergenceCriticalPct: 10, LiquidityDropPct: -20, DivergenceWatchPct: 10},
	}
	for _, th := range bad {
		_, err := NewSignalClassifier(th)
		require.Error(t, err, "%+v", th)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(testVenues(t))
	rec := models.SnapshotRecord{
		AssetID:     "  PKM-001 ",
		DisplayName: " Charizard ",
		VenuePrices: map[string]float64{" Beezie": 750, "eBay ": 830},
	}
	out, err := n.Normalize(rec)
	require.NoError(t, err)
	assert.Equal(t, "PKM-001", out.AssetID)
	assert.Equal(t, "Charizard", out.DisplayName)
	assert.Equal(t, map[string]float64{"Beezie": 750, "eBay": 830}, out.VenuePrices)

	out.VenuePrices["Beezie"] = 1
	assert.Equal(t, 750.0, rec.VenuePrices[" Beezie"])
}

func TestNormalizeAcceptsAllZero(t *testing.T) {
	n := NewNormalizer(testVenues(t))
	_, err := n.Normalize(models.SnapshotRecord{
		AssetID:     "Z",
		VenuePrices: map[string]float64{"Beezie": 0, "eBay": 0},
	})
	require.NoError(t, err)
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	n := NewNormalizer(testVenues(t))
	cases := map[string]models.SnapshotRecord{
		"missing id":     {VenuePrices: map[string]float64{"Beezie": 1, "eBay": 1}},
		"empty prices":   {AssetID: "A"},
		"negative price": {AssetID: "A", VenuePrices: map[string]float64{"Beezie": -1, "eBay": 1}},
		"nan price":      {AssetID: "A", VenuePrices: map[string]float64{"Beezie": math.NaN(), "eBay": 1}},
		"unknown venue":  {AssetID: "A", VenuePrices: map[string]float64{"Beezie": 1, "eBay": 1, "StockX": 1}},
		"no off-chain":   {AssetID: "A", VenuePrices: map[string]float64{"Beezie": 1, "CollectorCrypt": 1}},
		"no on-chain":    {AssetID: "A", VenuePrices: map[string]float64{"eBay": 1}},
		"duplicate":      {AssetID: "A", VenuePrices: map[string]float64{"Beezie": 1, " Beezie": 2, "eBay": 1}},
		"negative volatility": {
			AssetID:       "A",
			VenuePrices:   map[string]float64{"Beezie": 1, "eBay": 1},
			VolatilityPct: models.Float64Ptr(-1),
		},
		"negative supply": {
			AssetID:     "A",
			VenuePrices: map[string]float64{"Beezie": 1, "eBay": 1},
			Supply:      &models.Supply{OnChainCount: -1},
		},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := n.Normalize(rec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))
			var re *RecordError
			require.True(t, errors.As(err, &re))
		})
	}
}
