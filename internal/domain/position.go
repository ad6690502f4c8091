package domain

import "time"

// Side es la dirección de una apuesta.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ExitReason clasifica cómo se cerró un trade.
type ExitReason string

const (
	ExitTarget         ExitReason = "TARGET"          // el precio volvió a la midline a favor
	ExitStop           ExitReason = "STOP"            // excursión adversa más allá de stopSigma
	ExitTime           ExitReason = "TIME"            // agotó maxHoldingDays sin target ni stop
	ExitCircuitBreaker ExitReason = "CIRCUIT_BREAKER" // liquidación forzada por drawdown
)

// OpenPosition es una apuesta abierta con su contexto de entrada.
// Inmutable una vez creada; se consume exactamente una vez al salir.
type OpenPosition struct {
	Ticker          string    `json:"ticker"`
	EntryDate       time.Time `json:"entry_date"`
	EntryStep       int       `json:"entry_step"` // índice en el eje de fechas simuladas
	EntryPrice      float64   `json:"entry_price"`
	Side            Side      `json:"side"`
	SigmaAtEntry    float64   `json:"sigma_at_entry"`
	RSquaredAtEntry float64   `json:"r_squared_at_entry"`
	SlopeAtEntry    float64   `json:"slope_at_entry"`
}

// ClosedTrade es una entrada del ledger de trades cerrados.
// Append-only: nunca se muta después de crearse. El ledger es la única
// fuente de verdad para las estadísticas del run.
type ClosedTrade struct {
	Ticker      string     `json:"ticker"`
	EntryDate   time.Time  `json:"entry_date"`
	ExitDate    time.Time  `json:"exit_date"`
	Side        Side       `json:"side"`
	EntryPrice  float64    `json:"entry_price"`
	ExitPrice   float64    `json:"exit_price"`
	ReturnPct   float64    `json:"return_pct"`
	HoldingDays int        `json:"holding_days"` // pasos simulados entre entrada y salida
	ExitReason  ExitReason `json:"exit_reason"`
}

// CandidateSignal es un candidato de entrada que pasó todos los gates,
// puntuado para la cola de admisión por convicción.
type CandidateSignal struct {
	Ticker        string    `json:"ticker"`
	Date          time.Time `json:"date"`
	Side          Side      `json:"side"`
	Price         float64   `json:"price"`
	Conviction    float64   `json:"conviction"`
	SigmaDistance float64   `json:"sigma_distance"`
	RSquared      float64   `json:"r_squared"`
	Slope         float64   `json:"slope"`
}
