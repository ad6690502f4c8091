package ports

import (
	"context"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// PriceHistoryProvider entrega, por ticker, la secuencia cronológica de
// barras de precio y un snapshot de fundamentales.
type PriceHistoryProvider interface {
	// ListTickers devuelve todos los tickers disponibles en el store,
	// ordenados ascendente.
	ListTickers(ctx context.Context) ([]string, error)

	// GetPriceHistory devuelve hasta limit barras diarias del ticker,
	// ordenadas por fecha ascendente. limit <= 0 devuelve todo el histórico.
	GetPriceHistory(ctx context.Context, ticker string, limit int) ([]domain.PriceBar, error)

	// GetFundamentals devuelve el snapshot de fundamentales del ticker.
	// Si no hay fila, devuelve campos ausentes — nunca es un error:
	// un fundamental ausente jamás bloquea una entrada.
	GetFundamentals(ctx context.Context, ticker string) (domain.Fundamentals, error)
}
