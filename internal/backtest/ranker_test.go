package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

var testDate = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

// goodChannel devuelve un canal alcista de calidad con el precio hundido.
func goodChannel() domain.RegressionChannel {
	return domain.RegressionChannel{
		Slope:         0.5,
		RSquared:      0.9,
		ResidualSigma: 1.0,
		SigmaDistance: -2.5,
		Points:        domain.MinChannelPoints,
	}
}

func TestEvaluateCandidate_LongSignal(t *testing.T) {
	p := domain.DefaultParameters()
	f := domain.Fundamentals{BookToMarket: domain.NewFundamental(0.8)}

	cand, ok := EvaluateCandidate("EQNR", testDate, 150.0, goodChannel(), f, p)

	require.True(t, ok)
	assert.Equal(t, domain.SideLong, cand.Side)
	assert.Equal(t, 150.0, cand.Price)
	// convicción = r² × |dist| × max(btm, 0.5) = 0.9 × 2.5 × 0.8
	assert.InDelta(t, 1.8, cand.Conviction, 1e-9)
}

func TestEvaluateCandidate_ShortSignal(t *testing.T) {
	p := domain.DefaultParameters()
	ch := goodChannel()
	ch.Slope = -0.5
	ch.SigmaDistance = 2.5

	cand, ok := EvaluateCandidate("DNB", testDate, 150.0, ch, domain.Fundamentals{}, p)

	require.True(t, ok)
	assert.Equal(t, domain.SideShort, cand.Side)
	// bookToMarket ausente → multiplicador 0.5
	assert.InDelta(t, 0.9*2.5*0.5, cand.Conviction, 1e-9)
}

func TestEvaluateCandidate_NoSignalChannel(t *testing.T) {
	ch := goodChannel()
	ch.Points = domain.MinChannelPoints - 1

	_, ok := EvaluateCandidate("EQNR", testDate, 150.0, ch, domain.Fundamentals{}, domain.DefaultParameters())
	assert.False(t, ok)
}

func TestEvaluateCandidate_FundamentalsGate(t *testing.T) {
	p := domain.DefaultParameters() // min_book_to_market = 0.3

	// Presente y por debajo del mínimo → bloquea
	f := domain.Fundamentals{BookToMarket: domain.NewFundamental(0.1)}
	_, ok := EvaluateCandidate("EQNR", testDate, 150.0, goodChannel(), f, p)
	assert.False(t, ok)

	// Ausente → nunca bloquea
	_, ok = EvaluateCandidate("EQNR", testDate, 150.0, goodChannel(), domain.Fundamentals{}, p)
	assert.True(t, ok)

	// EarningsYield negativo con mínimo 0 → bloquea
	f = domain.Fundamentals{EarningsYield: domain.NewFundamental(-0.02)}
	_, ok = EvaluateCandidate("EQNR", testDate, 150.0, goodChannel(), f, p)
	assert.False(t, ok)
}

func TestEvaluateCandidate_QualityGate(t *testing.T) {
	p := domain.DefaultParameters()

	ch := goodChannel()
	ch.RSquared = 0.3 // < 0.5
	_, ok := EvaluateCandidate("EQNR", testDate, 150.0, ch, domain.Fundamentals{}, p)
	assert.False(t, ok)

	ch = goodChannel()
	ch.Slope = 0.00005 // |slope| < min_slope
	_, ok = EvaluateCandidate("EQNR", testDate, 150.0, ch, domain.Fundamentals{}, p)
	assert.False(t, ok)
}

func TestEvaluateCandidate_WrongDirection(t *testing.T) {
	p := domain.DefaultParameters()

	// Canal alcista con el precio disparado por encima: ni LONG ni SHORT
	ch := goodChannel()
	ch.SigmaDistance = 2.5
	_, ok := EvaluateCandidate("EQNR", testDate, 150.0, ch, domain.Fundamentals{}, p)
	assert.False(t, ok)

	// Hundido pero no lo suficiente
	ch = goodChannel()
	ch.SigmaDistance = -1.5
	_, ok = EvaluateCandidate("EQNR", testDate, 150.0, ch, domain.Fundamentals{}, p)
	assert.False(t, ok)
}

func TestEvaluateCandidate_ConvictionFloorsLowBookToMarket(t *testing.T) {
	p := domain.DefaultParameters()
	p.MinBookToMarket = 0 // que el gate no interfiera

	f := domain.Fundamentals{BookToMarket: domain.NewFundamental(0.2)}
	cand, ok := EvaluateCandidate("EQNR", testDate, 150.0, goodChannel(), f, p)

	require.True(t, ok)
	// max(0.2, 0.5) = 0.5: un btm bajo no castiga más que uno ausente
	assert.InDelta(t, 0.9*2.5*0.5, cand.Conviction, 1e-9)
}

func TestRankCandidates_OrderAndTieBreak(t *testing.T) {
	cands := []domain.CandidateSignal{
		{Ticker: "TEL", Conviction: 1.0},
		{Ticker: "DNB", Conviction: 2.0},
		{Ticker: "AKSO", Conviction: 1.0},
	}

	ranked := RankCandidates(cands)

	require.Len(t, ranked, 3)
	assert.Equal(t, "DNB", ranked[0].Ticker)
	assert.Equal(t, "AKSO", ranked[1].Ticker, "empate en convicción → ticker ascendente")
	assert.Equal(t, "TEL", ranked[2].Ticker)
}

func TestAdmitCandidates_RespectsSlots(t *testing.T) {
	cands := []domain.CandidateSignal{
		{Ticker: "A", Conviction: 3.0},
		{Ticker: "B", Conviction: 2.0},
		{Ticker: "C", Conviction: 1.0},
	}

	admitted := AdmitCandidates(cands, 2)
	require.Len(t, admitted, 2)
	assert.Equal(t, "A", admitted[0].Ticker)
	assert.Equal(t, "B", admitted[1].Ticker)

	assert.Empty(t, AdmitCandidates(cands, 0))
	assert.Len(t, AdmitCandidates(cands, 10), 3)
}
