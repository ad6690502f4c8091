package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el resultado del run en el modo configurado.
func (c *Console) Notify(_ context.Context, result domain.BacktestResult) error {
	if c.table {
		c.printFull(result)
	} else {
		c.printCompact(result)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(r domain.BacktestResult) {
	s := r.Summary

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d tickers → %d trades | win %.0f%% | ret %+.2f%% | dd %.1f%% | sharpe %.2f",
		time.Now().Format("15:04:05"), r.TickersAnalyzed, s.TotalTrades,
		s.WinRate*100, s.TotalReturn*100, s.MaxDrawdown*100, s.Sharpe)

	if r.CircuitBreakerTripped {
		fmt.Fprintf(&sb, " | BREAKER %s", r.CircuitBreakerDate.Format("2006-01-02"))
	}
	if n := len(r.OpenSignals); n > 0 {
		best := r.OpenSignals[0]
		fmt.Fprintf(&sb, " | %d señales (top: %s %s conv %.2f)",
			n, best.Ticker, best.Side, best.Conviction)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime el ledger completo, el summary y las señales abiertas.
func (c *Console) printFull(r domain.BacktestResult) {
	s := r.Summary

	fmt.Fprintf(c.out, "\n[%s] backtest de canal — %d tickers analizados, %d trades\n",
		time.Now().Format("15:04:05"), r.TickersAnalyzed, s.TotalTrades)

	if len(r.Trades) > 0 {
		table := tablewriter.NewWriter(c.out)
		table.Header("#", "Ticker", "Side", "Entry", "Exit", "Px in", "Px out", "Ret%", "Days", "Reason")
		for i, t := range r.Trades {
			table.Append(
				fmt.Sprintf("%d", i+1),
				t.Ticker,
				string(t.Side),
				t.EntryDate.Format("2006-01-02"),
				t.ExitDate.Format("2006-01-02"),
				fmt.Sprintf("%.2f", t.EntryPrice),
				fmt.Sprintf("%.2f", t.ExitPrice),
				fmt.Sprintf("%+.2f", t.ReturnPct*100),
				fmt.Sprintf("%d", t.HoldingDays),
				string(t.ExitReason),
			)
		}
		table.Render()
	}

	fmt.Fprintf(c.out, "\n  --- SUMMARY ---\n")
	fmt.Fprintf(c.out, "  Win rate:        %.1f%%\n", s.WinRate*100)
	fmt.Fprintf(c.out, "  Mean return:     %+.2f%%\n", s.MeanReturn*100)
	fmt.Fprintf(c.out, "  Total return:    %+.2f%%  (final equity %.4f)\n", s.TotalReturn*100, r.FinalEquity)
	fmt.Fprintf(c.out, "  Max drawdown:    %.2f%%\n", s.MaxDrawdown*100)
	fmt.Fprintf(c.out, "  Worst trade:     %+.2f%%\n", s.WorstTrade*100)
	fmt.Fprintf(c.out, "  Sharpe:          %.2f\n", s.Sharpe)
	fmt.Fprintf(c.out, "  Profit factor:   %s\n", profitFactorLabel(s.ProfitFactor))
	fmt.Fprintf(c.out, "  Avg holding:     %.1f días\n", s.AvgHoldingDays)
	fmt.Fprintf(c.out, "  Salidas:         %s\n", exitBreakdown(s.ExitReasons))

	if r.CircuitBreakerTripped {
		fmt.Fprintf(c.out, "\n  !! CIRCUIT BREAKER disparado el %s — caminata detenida\n",
			r.CircuitBreakerDate.Format("2006-01-02"))
	}

	if len(r.OpenSignals) > 0 {
		fmt.Fprintf(c.out, "\n  --- SEÑALES ABIERTAS (última fecha) ---\n")
		table := tablewriter.NewWriter(c.out)
		table.Header("#", "Ticker", "Side", "Price", "σ dist", "R²", "Conviction")
		for i, sig := range r.OpenSignals {
			table.Append(
				fmt.Sprintf("%d", i+1),
				sig.Ticker,
				string(sig.Side),
				fmt.Sprintf("%.2f", sig.Price),
				fmt.Sprintf("%+.2f", sig.SigmaDistance),
				fmt.Sprintf("%.3f", sig.RSquared),
				fmt.Sprintf("%.3f", sig.Conviction),
			)
		}
		table.Render()
	}
	fmt.Fprintln(c.out)
}

// PrintSweep imprime la comparativa de un barrido de parámetros,
// un run por fila en el mismo orden en que se pidieron.
func (c *Console) PrintSweep(results []domain.BacktestResult) {
	if len(results) == 0 {
		fmt.Fprintln(c.out, "\n  Barrido sin resultados.")
		return
	}

	fmt.Fprintf(c.out, "\n=== SWEEP — %d combinaciones ===\n", len(results))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Entry σ", "Stop σ", "Hold", "MaxPos", "Trades", "Win%", "Ret%", "DD%", "Sharpe", "Brk")
	for i, r := range results {
		brk := ""
		if r.CircuitBreakerTripped {
			brk = "X"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.1f", r.Params.EntryThresholdSigma),
			fmt.Sprintf("%.1f", r.Params.StopSigma),
			fmt.Sprintf("%d", r.Params.MaxHoldingDays),
			fmt.Sprintf("%d", r.Params.MaxPositions),
			fmt.Sprintf("%d", r.Summary.TotalTrades),
			fmt.Sprintf("%.0f", r.Summary.WinRate*100),
			fmt.Sprintf("%+.2f", r.Summary.TotalReturn*100),
			fmt.Sprintf("%.1f", r.Summary.MaxDrawdown*100),
			fmt.Sprintf("%.2f", r.Summary.Sharpe),
			brk,
		)
	}
	table.Render()
	fmt.Fprintln(c.out)
}

// --- helpers ---

func profitFactorLabel(pf float64) string {
	if pf >= domain.ProfitFactorMax {
		return "inf (sin pérdidas)"
	}
	return fmt.Sprintf("%.2f", pf)
}

func exitBreakdown(reasons map[domain.ExitReason]int) string {
	if len(reasons) == 0 {
		return "-"
	}
	order := []domain.ExitReason{
		domain.ExitTarget, domain.ExitStop, domain.ExitTime, domain.ExitCircuitBreaker,
	}
	var parts []string
	for _, r := range order {
		if n, ok := reasons[r]; ok {
			parts = append(parts, fmt.Sprintf("%s:%d", r, n))
		}
	}
	return strings.Join(parts, "  ")
}
