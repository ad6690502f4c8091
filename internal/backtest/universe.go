package backtest

import (
	"context"
	"fmt"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
	"github.com/Erchegos/ineqre-obx-sub002/internal/ports"
)

// LoadUniverse carga precios y fundamentales de los tickers pedidos desde el
// proveedor. Si tickers está vacío, usa todos los disponibles. Un ticker sin
// histórico no es un error; un universo sin ningún dato sí lo es.
func LoadUniverse(
	ctx context.Context,
	provider ports.PriceHistoryProvider,
	tickers []string,
	limit int,
) (map[string][]domain.PriceBar, map[string]domain.Fundamentals, error) {
	if len(tickers) == 0 {
		all, err := provider.ListTickers(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("backtest.LoadUniverse: listando tickers: %w", err)
		}
		tickers = all
	}

	prices := make(map[string][]domain.PriceBar, len(tickers))
	funds := make(map[string]domain.Fundamentals, len(tickers))
	for _, ticker := range tickers {
		bars, err := provider.GetPriceHistory(ctx, ticker, limit)
		if err != nil {
			return nil, nil, fmt.Errorf("backtest.LoadUniverse: histórico de %s: %w", ticker, err)
		}
		if len(bars) == 0 {
			continue
		}
		prices[ticker] = bars

		f, err := provider.GetFundamentals(ctx, ticker)
		if err != nil {
			return nil, nil, fmt.Errorf("backtest.LoadUniverse: fundamentales de %s: %w", ticker, err)
		}
		funds[ticker] = f
	}

	if len(prices) == 0 {
		return nil, nil, fmt.Errorf("backtest.LoadUniverse: ningún ticker con histórico disponible")
	}
	return prices, funds, nil
}
