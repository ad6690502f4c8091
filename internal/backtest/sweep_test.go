package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

func TestSweep_ResultsMatchParamOrder(t *testing.T) {
	prices := map[string][]domain.PriceBar{
		"AAA": mkBars(seriesLen, dipped),
		"BBB": mkBars(seriesLen, flat),
	}

	base := testParams()
	paramSets := make([]domain.StrategyParameters, 0, 3)
	for _, entry := range []float64{1.5, 2.0, 50.0} {
		p := base
		p.EntryThresholdSigma = entry
		paramSets = append(paramSets, p)
	}

	results := Sweep(prices, nil, paramSets, 2)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, paramSets[i], r.Params, "results[i] corresponde a paramSets[i]")
	}
	// el umbral imposible no produce trades; los alcanzables sí
	assert.NotEmpty(t, results[0].Trades)
	assert.NotEmpty(t, results[1].Trades)
	assert.Empty(t, results[2].Trades)
}

func TestSweep_ParallelMatchesSequential(t *testing.T) {
	prices := map[string][]domain.PriceBar{
		"AAA": mkBars(seriesLen, dipped),
	}
	paramSets := []domain.StrategyParameters{testParams(), testParams(), testParams()}

	parallel := Sweep(prices, nil, paramSets, 3)
	sequential := Sweep(prices, nil, paramSets, 1)

	require.Equal(t, sequential, parallel, "el paralelismo no cambia ningún resultado")
}

// --- LoadUniverse ---

type stubProvider struct {
	prices map[string][]domain.PriceBar
	funds  map[string]domain.Fundamentals
	err    error
}

func (s *stubProvider) ListTickers(_ context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for t := range s.prices {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubProvider) GetPriceHistory(_ context.Context, ticker string, _ int) ([]domain.PriceBar, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.prices[ticker], nil
}

func (s *stubProvider) GetFundamentals(_ context.Context, ticker string) (domain.Fundamentals, error) {
	return s.funds[ticker], nil
}

func TestLoadUniverse_AllTickersWhenUnspecified(t *testing.T) {
	provider := &stubProvider{
		prices: map[string][]domain.PriceBar{
			"AAA": mkBars(10, trend),
			"BBB": mkBars(10, flat),
		},
		funds: map[string]domain.Fundamentals{
			"AAA": {BookToMarket: domain.NewFundamental(0.7)},
		},
	}

	prices, funds, err := LoadUniverse(context.Background(), provider, nil, 0)

	require.NoError(t, err)
	assert.Len(t, prices, 2)
	assert.True(t, funds["AAA"].BookToMarket.Valid)
	assert.False(t, funds["BBB"].BookToMarket.Valid)
}

func TestLoadUniverse_SkipsTickersWithoutHistory(t *testing.T) {
	provider := &stubProvider{
		prices: map[string][]domain.PriceBar{"AAA": mkBars(10, trend)},
	}

	prices, _, err := LoadUniverse(context.Background(), provider, []string{"AAA", "NOSUCH"}, 0)

	require.NoError(t, err)
	assert.Len(t, prices, 1, "un ticker sin histórico se salta, no es un error")
}

func TestLoadUniverse_EmptyUniverseIsAnError(t *testing.T) {
	provider := &stubProvider{prices: map[string][]domain.PriceBar{}}

	_, _, err := LoadUniverse(context.Background(), provider, nil, 0)
	assert.Error(t, err)
}

func TestLoadUniverse_PropagatesProviderError(t *testing.T) {
	boom := errors.New("disco roto")
	provider := &stubProvider{err: boom}

	_, _, err := LoadUniverse(context.Background(), provider, []string{"AAA"}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
