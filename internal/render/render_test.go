package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RWAPulse/internal/domain/models"
)

func TestMoney(t *testing.T) {
	cases := map[float64]string{
		0:          "$0.00",
		750:        "$750.00",
		1234.5:     "$1,234.50",
		4800000:    "$4,800,000.00",
		123456.789: "$123,456.79",
		-1234.5:    "-$1,234.50",
	}
	for in, want := range cases {
		assert.Equal(t, want, Money(in), "Money(%v)", in)
	}
	assert.Equal(t, "13.33", Pct(-13.333))
}

func TestPersonaRender(t *testing.T) {
	p, err := NewPersona()
	require.NoError(t, err)

	arb := models.Signal{
		AssetID: "PKM-001", DisplayName: "Charizard Base Set PSA 9", Kind: models.KindArbitrage,
		DivergencePct: 13.33, CheapestVenue: "Beezie", MostExpensiveVenue: "TCGPlayer",
		LowPrice: 750, HighPrice: 850,
		Arbitrage: &models.ArbitrageDetail{Direction: models.OnChainDiscount, BuyVenue: "Beezie", SellVenue: "TCGPlayer"},
	}
	post, err := p.Render(arb)
	require.NoError(t, err)
	assert.Equal(t, "THE BALANCE IS DISTURBED: Charizard Base Set PSA 9", post.Headline)
	assert.Contains(t, post.Body, "Beezie: $750.00")
	assert.Contains(t, post.Body, "13.33% (Undervalued On-Chain)")
	assert.Equal(t, []string{"#RWA", "#Arbitrage"}, post.Tags)

	arb.Arbitrage.Direction = models.OffChainDiscount
	post, err = p.Render(arb)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(post.Headline, "ILLUSION DETECTED"))

	post, err = p.Render(models.Signal{
		AssetID: "PKM-002", Kind: models.KindScarcity,
		Scarcity: &models.ScarcityDetail{OnChainCount: 5, OffChainCount: 1, MinCount: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, "THE TIDE RECEDES: PKM-002", post.Headline)
	assert.Contains(t, post.Body, "Only 5 left")

	post, err = p.Render(models.Signal{
		AssetID: "X", Kind: models.KindLiquidity,
		Liquidity: &models.LiquidityDetail{VolumeTrendPct: -35.5, DropPct: -20},
	})
	require.NoError(t, err)
	assert.Contains(t, post.Headline, "THE SILENCE BEFORE THE STORM")
	assert.Contains(t, post.Body, "35.50%")

	post, err = p.Render(models.Signal{AssetID: "Y", Kind: models.KindStable, Watch: true, LowPrice: 1, HighPrice: 1.05, DivergencePct: 5})
	require.NoError(t, err)
	assert.Contains(t, post.Headline, "HARMONY RESTORED")
	assert.Contains(t, post.Body, "keeps one eye open")
	assert.NotContains(t, post.Body, "Tech specs")

	post, err = p.Render(models.Signal{
		AssetID: "Y", Kind: models.KindStable, LowPrice: 1, HighPrice: 1.05, DivergencePct: 5,
		VolatilityPct: models.Float64Ptr(7.25),
	})
	require.NoError(t, err)
	assert.Contains(t, post.Body, "Tech specs: Div 5.00% | Vol 7.25%")
	assert.Equal(t, models.KindStable, post.Kind)

	post, err = p.Render(models.Signal{AssetID: "Z", Kind: models.KindStable, NoData: true})
	require.NoError(t, err)
	assert.Equal(t, "THE WATERS ARE DARK: Z", post.Headline)
}

func TestPersonaRejectsInconsistentSignal(t *testing.T) {
	p, err := NewPersona()
	require.NoError(t, err)

	_, err = p.Render(models.Signal{AssetID: "A", Kind: models.KindScarcity})
	assert.Error(t, err)
	_, err = p.Render(models.Signal{AssetID: "A", Kind: "bogus"})
	assert.Error(t, err)
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, WithBanner(true))

	require.NoError(t, s.Boot([]string{"Loading venue partition"}))
	require.NoError(t, s.Boot([]string{"again"}))
	require.NoError(t, s.Status("Scanning active liquidity pools..."))
	require.NoError(t, s.Write(context.Background(), Post{Headline: "H", Body: "a\nb", Tags: []string{"#RWA"}}))

	out := buf.String()
	assert.Contains(t, out, "[INIT] Loading venue partition ... OK")
	assert.NotContains(t, out, "again")
	assert.Contains(t, out, "> Scanning active liquidity pools...")
	assert.Contains(t, out, "H\n   a\n   b\n   #RWA")
}

func TestConsoleSinkPacingHonorsContext(t *testing.T) {
	s := NewConsoleSink(&bytes.Buffer{}, WithPacing(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Write(ctx, Post{Headline: "H"}), context.Canceled)
}
