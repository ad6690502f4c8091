package notify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

func sampleResult() domain.BacktestResult {
	day := func(i int) time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	return domain.BacktestResult{
		Params:          domain.DefaultParameters(),
		TickersAnalyzed: 8,
		FinalEquity:     1.0421,
		Trades: []domain.ClosedTrade{
			{Ticker: "EQNR", Side: domain.SideLong, EntryDate: day(10), ExitDate: day(13),
				EntryPrice: 150.2, ExitPrice: 155.8, ReturnPct: 0.0373, HoldingDays: 3,
				ExitReason: domain.ExitTarget},
			{Ticker: "DNB", Side: domain.SideShort, EntryDate: day(20), ExitDate: day(34),
				EntryPrice: 210.0, ExitPrice: 212.1, ReturnPct: -0.01, HoldingDays: 14,
				ExitReason: domain.ExitTime},
		},
		OpenSignals: []domain.CandidateSignal{
			{Ticker: "TEL", Side: domain.SideLong, Price: 128.4,
				Conviction: 1.92, SigmaDistance: -2.4, RSquared: 0.91, Slope: 0.3},
		},
		Summary: domain.Summary{
			TotalTrades: 2, WinRate: 0.5, MeanReturn: 0.0136, TotalReturn: 0.0421,
			MaxDrawdown: 0.002, WorstTrade: -0.01, Sharpe: 1.3, ProfitFactor: 3.73,
			AvgHoldingDays: 8.5,
			ExitReasons:    map[domain.ExitReason]int{domain.ExitTarget: 1, domain.ExitTime: 1},
		},
	}
}

func TestConsole_CompactLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	require.NoError(t, c.Notify(context.Background(), sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "2 trades")
	assert.Contains(t, out, "win 50%")
	assert.Contains(t, out, "TEL")
	assert.NotContains(t, out, "BREAKER")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")), "modo compacto: una línea")
}

func TestConsole_FullTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)

	require.NoError(t, c.Notify(context.Background(), sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "EQNR")
	assert.Contains(t, out, "TARGET")
	assert.Contains(t, out, "TIME")
	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "SEÑALES ABIERTAS")
	assert.Contains(t, out, "TEL")
}

func TestConsole_BreakerBanner(t *testing.T) {
	result := sampleResult()
	result.CircuitBreakerTripped = true
	result.CircuitBreakerDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	result.OpenSignals = nil

	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)
	require.NoError(t, c.Notify(context.Background(), result))

	out := buf.String()
	assert.Contains(t, out, "CIRCUIT BREAKER")
	assert.Contains(t, out, "2024-03-05")
	assert.NotContains(t, out, "SEÑALES ABIERTAS")
}

func TestConsole_PrintSweep(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)

	r1 := sampleResult()
	r2 := sampleResult()
	r2.Params.EntryThresholdSigma = 1.5
	r2.CircuitBreakerTripped = true

	c.PrintSweep([]domain.BacktestResult{r1, r2})

	out := buf.String()
	assert.Contains(t, out, "SWEEP")
	assert.Contains(t, out, "2 combinaciones")
	assert.Contains(t, out, "1.5")
}

func TestConsole_ProfitFactorLabel(t *testing.T) {
	assert.Equal(t, "inf (sin pérdidas)", profitFactorLabel(domain.ProfitFactorMax))
	assert.Equal(t, "2.50", profitFactorLabel(2.5))
}
