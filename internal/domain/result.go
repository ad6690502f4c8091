package domain

import "time"

// EquityPoint es un punto de la curva de equity del run, uno por fecha simulada.
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Equity   float64   `json:"equity"`
	Drawdown float64   `json:"drawdown"`
}

// BacktestResult es la salida completa de un run: el ledger ordenado,
// las señales abiertas a la última fecha, y las estadísticas agregadas.
type BacktestResult struct {
	Params                StrategyParameters `json:"params"`
	Trades                []ClosedTrade      `json:"trades"`
	OpenSignals           []CandidateSignal  `json:"open_signals"`
	Summary               Summary            `json:"summary"`
	EquityCurve           []EquityPoint      `json:"equity_curve"`
	FinalEquity           float64            `json:"final_equity"`
	TickersAnalyzed       int                `json:"tickers_analyzed"`
	CircuitBreakerTripped bool               `json:"circuit_breaker_tripped"`
	CircuitBreakerDate    time.Time          `json:"circuit_breaker_date,omitzero"`
}

// BacktestRun es un run persistido, identificado por UUID.
type BacktestRun struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Result    BacktestResult `json:"result"`
}

// RunRecord es el resumen ligero de un run guardado, para listados.
type RunRecord struct {
	ID                    string             `json:"id"`
	CreatedAt             time.Time          `json:"created_at"`
	Params                StrategyParameters `json:"params"`
	TickersAnalyzed       int                `json:"tickers_analyzed"`
	TotalTrades           int                `json:"total_trades"`
	TotalReturn           float64            `json:"total_return"`
	WinRate               float64            `json:"win_rate"`
	MaxDrawdown           float64            `json:"max_drawdown"`
	CircuitBreakerTripped bool               `json:"circuit_breaker_tripped"`
}
