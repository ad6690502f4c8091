package backtest

import (
	"sort"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// PositionBook mantiene las apuestas abiertas de un run, una por ticker,
// acotado por capacidad. Propiedad exclusiva de un simulador: sin locks.
type PositionBook struct {
	max       int
	positions map[string]domain.OpenPosition
}

// NewPositionBook crea un book con capacidad max (mínimo 1).
func NewPositionBook(max int) *PositionBook {
	if max <= 0 {
		max = 1
	}
	return &PositionBook{
		max:       max,
		positions: make(map[string]domain.OpenPosition, max),
	}
}

// Len devuelve el número de posiciones abiertas.
func (b *PositionBook) Len() int { return len(b.positions) }

// SpareCapacity devuelve cuántos slots quedan libres.
func (b *PositionBook) SpareCapacity() int { return b.max - len(b.positions) }

// Has devuelve true si el ticker tiene posición abierta.
func (b *PositionBook) Has(ticker string) bool {
	_, ok := b.positions[ticker]
	return ok
}

// Open registra una posición nueva. Devuelve false si no hay capacidad
// o el ticker ya tiene posición — el book nunca supera max.
func (b *PositionBook) Open(pos domain.OpenPosition) bool {
	if len(b.positions) >= b.max || b.Has(pos.Ticker) {
		return false
	}
	b.positions[pos.Ticker] = pos
	return true
}

// Close consume la posición del ticker, eliminándola del book.
func (b *PositionBook) Close(ticker string) (domain.OpenPosition, bool) {
	pos, ok := b.positions[ticker]
	if ok {
		delete(b.positions, ticker)
	}
	return pos, ok
}

// Tickers devuelve los tickers con posición abierta en orden ascendente,
// para que toda iteración sobre el book sea determinista.
func (b *PositionBook) Tickers() []string {
	out := make([]string, 0, len(b.positions))
	for t := range b.positions {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
