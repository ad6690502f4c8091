package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

func TestPositionBook_CapacityAndDuplicates(t *testing.T) {
	b := NewPositionBook(2)

	assert.True(t, b.Open(domain.OpenPosition{Ticker: "EQNR"}))
	assert.False(t, b.Open(domain.OpenPosition{Ticker: "EQNR"}), "un ticker, una posición")
	assert.True(t, b.Open(domain.OpenPosition{Ticker: "DNB"}))
	assert.False(t, b.Open(domain.OpenPosition{Ticker: "TEL"}), "book lleno")

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 0, b.SpareCapacity())
}

func TestPositionBook_CloseFreesSlot(t *testing.T) {
	b := NewPositionBook(1)
	require.True(t, b.Open(domain.OpenPosition{Ticker: "EQNR", EntryPrice: 150}))

	pos, ok := b.Close("EQNR")
	require.True(t, ok)
	assert.Equal(t, 150.0, pos.EntryPrice)
	assert.False(t, b.Has("EQNR"))
	assert.Equal(t, 1, b.SpareCapacity())

	_, ok = b.Close("EQNR")
	assert.False(t, ok, "la posición se consume exactamente una vez")
}

func TestPositionBook_TickersSorted(t *testing.T) {
	b := NewPositionBook(3)
	b.Open(domain.OpenPosition{Ticker: "TEL"})
	b.Open(domain.OpenPosition{Ticker: "AKSO"})
	b.Open(domain.OpenPosition{Ticker: "DNB"})

	assert.Equal(t, []string{"AKSO", "DNB", "TEL"}, b.Tickers())
}

func TestPositionBook_MinimumCapacityOne(t *testing.T) {
	b := NewPositionBook(0)
	assert.True(t, b.Open(domain.OpenPosition{Ticker: "EQNR"}))
	assert.False(t, b.Open(domain.OpenPosition{Ticker: "DNB"}))
}

func TestCircuitBreaker_TripsOnceAndNeverReverts(t *testing.T) {
	cb := NewCircuitBreaker(0.15)

	assert.False(t, cb.Check(0.10))
	assert.False(t, cb.Check(0.15), "el umbral es estricto: dd == threshold no dispara")
	assert.True(t, cb.Check(0.16))
	assert.True(t, cb.Tripped())

	// El drawdown puede recuperarse; el breaker no.
	assert.True(t, cb.Check(0.0))
}
