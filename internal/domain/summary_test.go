package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAggregate_EmptyLedger(t *testing.T) {
	s := Aggregate(nil, 5)

	assert.Equal(t, 0, s.TotalTrades)
	assert.Equal(t, 0.0, s.TotalReturn)
	assert.Equal(t, 0.0, s.Sharpe)
	assert.Empty(t, s.ExitReasons)
	assert.True(t, s.FirstEntry.IsZero())
}

func TestAggregate_TwoTrades(t *testing.T) {
	trades := []ClosedTrade{
		{
			Ticker: "EQNR", Side: SideLong,
			EntryDate: date("2024-01-02"), ExitDate: date("2024-01-20"),
			ReturnPct: 0.10, HoldingDays: 12, ExitReason: ExitTarget,
		},
		{
			Ticker: "DNB", Side: SideShort,
			EntryDate: date("2024-02-01"), ExitDate: date("2024-03-01"),
			ReturnPct: -0.05, HoldingDays: 20, ExitReason: ExitStop,
		},
	}

	s := Aggregate(trades, 2)

	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, 0.5, s.WinRate)
	assert.InDelta(t, 0.025, s.MeanReturn, 1e-9)
	// equity = 1.05 × 0.975 = 1.02375
	assert.InDelta(t, 0.02375, s.TotalReturn, 1e-9)
	// peak 1.05 → equity 1.02375 → dd 2.5%
	assert.InDelta(t, 0.025, s.MaxDrawdown, 1e-9)
	assert.Equal(t, -0.05, s.WorstTrade)
	assert.InDelta(t, 2.0, s.ProfitFactor, 1e-9)
	assert.Equal(t, 16.0, s.AvgHoldingDays)
	assert.Equal(t, map[ExitReason]int{ExitTarget: 1, ExitStop: 1}, s.ExitReasons)
	assert.Equal(t, date("2024-01-02"), s.FirstEntry)
	assert.Equal(t, date("2024-03-01"), s.LastExit)
	// media/desv de retornos por slot, anualizado por frecuencia de trades
	assert.InDelta(t, 0.8294, s.Sharpe, 0.001)
}

func TestAggregate_ProfitFactorSentinel(t *testing.T) {
	trades := []ClosedTrade{
		{ReturnPct: 0.05, EntryDate: date("2024-01-02"), ExitDate: date("2024-01-10"), ExitReason: ExitTarget},
		{ReturnPct: 0.03, EntryDate: date("2024-01-15"), ExitDate: date("2024-01-25"), ExitReason: ExitTarget},
	}

	s := Aggregate(trades, 1)

	assert.Equal(t, ProfitFactorMax, s.ProfitFactor, "sin pérdidas brutas → sentinela finito, no +Inf")
	assert.Equal(t, 1.0, s.WinRate)
	assert.Equal(t, 0.0, s.MaxDrawdown)
}

func TestAggregate_SingleTradeNoSharpe(t *testing.T) {
	trades := []ClosedTrade{
		{ReturnPct: 0.08, EntryDate: date("2024-01-02"), ExitDate: date("2024-01-20"), ExitReason: ExitTime},
	}

	s := Aggregate(trades, 1)

	require.Equal(t, 1, s.TotalTrades)
	assert.Equal(t, 0.0, s.Sharpe, "un solo trade no define desviación")
	assert.InDelta(t, 0.08, s.TotalReturn, 1e-9)
}

func TestAggregate_ZeroMaxPositionsFallsBackToOne(t *testing.T) {
	trades := []ClosedTrade{
		{ReturnPct: 0.10, EntryDate: date("2024-01-02"), ExitDate: date("2024-01-10"), ExitReason: ExitTarget},
	}

	s := Aggregate(trades, 0)

	assert.InDelta(t, 0.10, s.TotalReturn, 1e-9)
}
