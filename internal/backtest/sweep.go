package backtest

import (
	"runtime"
	"sync"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// Sweep corre un backtest independiente por cada set de parámetros sobre el
// mismo universo, repartidos en un pool de workers. Cada run es un Simulator
// propio, sin estado compartido, así que el paralelismo no compromete el
// determinismo: el resultado i siempre corresponde a paramSets[i].
func Sweep(
	prices map[string][]domain.PriceBar,
	fundamentals map[string]domain.Fundamentals,
	paramSets []domain.StrategyParameters,
	workers int,
) []domain.BacktestResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paramSets) {
		workers = len(paramSets)
	}

	results := make([]domain.BacktestResult, len(paramSets))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = NewSimulator(paramSets[i], prices, fundamentals).Run()
			}
		}()
	}

	for i := range paramSets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
