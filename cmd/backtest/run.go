package main

// run.go — los modos de ejecución one-shot: backtest simple y sweep.

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Erchegos/ineqre-obx-sub002/config"
	"github.com/Erchegos/ineqre-obx-sub002/internal/adapters/notify"
	"github.com/Erchegos/ineqre-obx-sub002/internal/adapters/storage"
	"github.com/Erchegos/ineqre-obx-sub002/internal/backtest"
	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// runSingle corre un backtest con los parámetros configurados, lo persiste
// y lo imprime.
func runSingle(ctx context.Context, store *storage.SQLiteStore, notifier *notify.Console, cfg *config.Config, tickers []string) {
	prices, funds, err := backtest.LoadUniverse(ctx, store, tickers, cfg.Backtest.HistoryLimit)
	if err != nil {
		slog.Error("no se pudo cargar el universo", "err", err)
		os.Exit(1)
	}

	started := time.Now()
	result := backtest.NewSimulator(cfg.Backtest.Params, prices, funds).Run()
	slog.Info("backtest terminado",
		"tickers", result.TickersAnalyzed,
		"trades", result.Summary.TotalTrades,
		"elapsed", time.Since(started))

	run := domain.BacktestRun{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Result:    result,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		slog.Warn("no se pudo persistir el run", "run_id", run.ID, "err", err)
	}

	if err := notifier.Notify(ctx, result); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

// runSweep corre la parrilla de umbrales de entrada × stops sobre el mismo
// universo, en paralelo, y la imprime comparada.
func runSweep(ctx context.Context, store *storage.SQLiteStore, notifier *notify.Console, cfg *config.Config, tickers []string) {
	prices, funds, err := backtest.LoadUniverse(ctx, store, tickers, cfg.Backtest.HistoryLimit)
	if err != nil {
		slog.Error("no se pudo cargar el universo", "err", err)
		os.Exit(1)
	}

	paramSets := sweepGrid(cfg.Backtest.Params)
	slog.Info("sweep arrancando", "combinations", len(paramSets), "tickers", len(prices))

	started := time.Now()
	results := backtest.Sweep(prices, funds, paramSets, 0)
	slog.Info("sweep terminado", "elapsed", time.Since(started))

	notifier.PrintSweep(results)
}

// sweepGrid genera la parrilla de combinaciones alrededor de los parámetros
// base: umbrales de entrada típicos × stops razonables.
func sweepGrid(base domain.StrategyParameters) []domain.StrategyParameters {
	entries := []float64{1.5, 2.0, 2.5}
	stops := []float64{2.0, 2.5, 3.0}

	var grid []domain.StrategyParameters
	for _, e := range entries {
		for _, s := range stops {
			p := base
			p.EntryThresholdSigma = e
			p.StopSigma = s
			grid = append(grid, p)
		}
	}
	return grid
}
