package domain

// StrategyParameters es la configuración inmutable de un run.
// La validación de rangos es responsabilidad del caller; el simulador
// tolera cualquier valor finito.
type StrategyParameters struct {
	EntryThresholdSigma float64 `json:"entry_threshold_sigma" yaml:"entry_threshold_sigma"`
	StopSigma           float64 `json:"stop_sigma" yaml:"stop_sigma"`
	MaxHoldingDays      int     `json:"max_holding_days" yaml:"max_holding_days"`
	MinRSquared         float64 `json:"min_r_squared" yaml:"min_r_squared"`
	MinSlope            float64 `json:"min_slope" yaml:"min_slope"`
	MinBookToMarket     float64 `json:"min_book_to_market" yaml:"min_book_to_market"`
	MinEarningsYield    float64 `json:"min_earnings_yield" yaml:"min_earnings_yield"`
	WindowSize          int     `json:"window_size" yaml:"window_size"`
	MaxPositions        int     `json:"max_positions" yaml:"max_positions"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
}

// DefaultParameters devuelve los parámetros por defecto de la estrategia
// (252 días de ventana ≈ un año bursátil).
func DefaultParameters() StrategyParameters {
	return StrategyParameters{
		EntryThresholdSigma: 2.0,
		StopSigma:           2.5,
		MaxHoldingDays:      14,
		MinRSquared:         0.5,
		MinSlope:            0.0001,
		MinBookToMarket:     0.3,
		MinEarningsYield:    0.0,
		WindowSize:          252,
		MaxPositions:        5,
		MaxDrawdownPct:      0.15,
	}
}
