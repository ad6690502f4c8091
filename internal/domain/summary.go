package domain

// summary.go — reducción del ledger de trades a estadísticas del run.
//
// El ledger (ordenado por fecha de salida) es la única entrada: el equity
// se reconstruye replicando la contabilidad del simulador, trade a trade,
// con peso 1/maxPositions por slot.

import (
	"math"
	"time"
)

// ProfitFactorMax es el sentinela cuando no hay pérdidas brutas.
// Se usa un valor grande finito en vez de +Inf para que el summary
// sobreviva la serialización JSON.
const ProfitFactorMax = 1000.0

// daysPerYear convierte el periodo cubierto por el ledger a años.
const daysPerYear = 365.25

// Summary son las estadísticas agregadas de un run terminado.
type Summary struct {
	TotalTrades    int                `json:"total_trades"`
	WinRate        float64            `json:"win_rate"`
	MeanReturn     float64            `json:"mean_return"`
	TotalReturn    float64            `json:"total_return"` // compuesto: ∏(1+r/maxPos) − 1
	MaxDrawdown    float64            `json:"max_drawdown"`
	WorstTrade     float64            `json:"worst_trade"`
	Sharpe         float64            `json:"sharpe"`
	ProfitFactor   float64            `json:"profit_factor"`
	AvgHoldingDays float64            `json:"avg_holding_days"`
	ExitReasons    map[ExitReason]int `json:"exit_reasons"`
	FirstEntry     time.Time          `json:"first_entry"`
	LastExit       time.Time          `json:"last_exit"`
}

// Aggregate reduce un ledger ordenado por fecha a un Summary.
// Todos los ratios definen fallback explícito cuando el denominador es cero.
func Aggregate(trades []ClosedTrade, maxPositions int) Summary {
	s := Summary{ExitReasons: make(map[ExitReason]int)}
	if len(trades) == 0 {
		return s
	}
	if maxPositions <= 0 {
		maxPositions = 1
	}

	equity, peak := 1.0, 1.0
	var wins int
	var sumRet, sumHold, grossProfit, grossLoss float64
	slotRets := make([]float64, 0, len(trades))

	for _, t := range trades {
		slot := t.ReturnPct / float64(maxPositions)
		slotRets = append(slotRets, slot)

		equity *= 1 + slot
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak; dd > s.MaxDrawdown {
				s.MaxDrawdown = dd
			}
		}

		sumRet += t.ReturnPct
		sumHold += float64(t.HoldingDays)
		s.ExitReasons[t.ExitReason]++

		if t.ReturnPct > 0 {
			wins++
			grossProfit += t.ReturnPct
		} else {
			grossLoss += -t.ReturnPct
		}
		if t.ReturnPct < s.WorstTrade {
			s.WorstTrade = t.ReturnPct
		}
		if s.FirstEntry.IsZero() || t.EntryDate.Before(s.FirstEntry) {
			s.FirstEntry = t.EntryDate
		}
		if t.ExitDate.After(s.LastExit) {
			s.LastExit = t.ExitDate
		}
	}

	n := float64(len(trades))
	s.TotalTrades = len(trades)
	s.WinRate = float64(wins) / n
	s.MeanReturn = sumRet / n
	s.TotalReturn = equity - 1
	s.AvgHoldingDays = sumHold / n
	s.ProfitFactor = profitFactor(grossProfit, grossLoss)
	s.Sharpe = sharpeRatio(slotRets, s.FirstEntry, s.LastExit)
	return s
}

// profitFactor = ganancia bruta / pérdida bruta, con sentinela si no hubo pérdidas.
func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return ProfitFactorMax
		}
		return 0
	}
	return grossProfit / grossLoss
}

// sharpeRatio es media ÷ desviación de los retornos por slot, anualizado
// usando trades/año como proxy de frecuencia. Devuelve 0 si la desviación
// es cero o no hay suficientes trades.
func sharpeRatio(slotRets []float64, first, last time.Time) float64 {
	n := len(slotRets)
	if n < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range slotRets {
		mean += r
	}
	mean /= float64(n)

	variance := 0.0
	for _, r := range slotRets {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(n - 1)
	if variance <= 0 {
		return 0
	}

	years := last.Sub(first).Hours() / 24 / daysPerYear
	if years <= 0 {
		return 0
	}
	tradesPerYear := float64(n) / years

	return mean / math.Sqrt(variance) * math.Sqrt(tradesPerYear)
}
