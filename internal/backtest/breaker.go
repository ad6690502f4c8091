package backtest

// CircuitBreaker es el control de riesgo a nivel de cartera: un flag
// monotónico que se dispara como mucho una vez por run cuando el drawdown
// supera el umbral. Es una parada protectora deliberada, no un error.
type CircuitBreaker struct {
	threshold float64
	tripped   bool
}

// NewCircuitBreaker crea un breaker con el umbral de drawdown dado.
func NewCircuitBreaker(maxDrawdownPct float64) *CircuitBreaker {
	return &CircuitBreaker{threshold: maxDrawdownPct}
}

// Check evalúa el drawdown corriente y devuelve true si el breaker queda
// disparado. Una vez disparado, nunca se revierte.
func (cb *CircuitBreaker) Check(drawdown float64) bool {
	if !cb.tripped && drawdown > cb.threshold {
		cb.tripped = true
	}
	return cb.tripped
}

// Tripped devuelve true si el breaker ya se disparó en este run.
func (cb *CircuitBreaker) Tripped() bool { return cb.tripped }
