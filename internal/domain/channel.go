package domain

// channel.go — ajuste del canal de regresión lineal (mean-reversion channel).
//
// FitChannel es una función pura: mismo window de precios → mismo canal,
// siempre. Toda la reproducibilidad del backtest descansa en esto.

import "math"

// MinChannelPoints es el mínimo de observaciones usables para emitir señal.
// Por debajo, el canal degrada a "sin señal" (slope=0, rSquared=0).
const MinChannelPoints = 100

// RegressionChannel es el resultado de ajustar una tendencia lineal sobre
// una ventana de precios. Se recalcula fresco cada vez que se necesita;
// nunca se cachea entre fechas.
type RegressionChannel struct {
	Slope         float64 `json:"slope"`
	Intercept     float64 `json:"intercept"`
	RSquared      float64 `json:"r_squared"`
	ResidualSigma float64 `json:"residual_sigma"`
	Midline       float64 `json:"midline"`        // valor de la recta en el último índice
	SigmaDistance float64 `json:"sigma_distance"` // (precio − midline) / sigma
	Points        int     `json:"points"`         // observaciones usables tras filtrar
}

// HasSignal devuelve true si la ventana tuvo suficientes puntos usables.
func (c RegressionChannel) HasSignal() bool {
	return c.Points >= MinChannelPoints
}

// FitChannel ajusta mínimos cuadrados ordinarios de precio contra el índice
// temporal 0..n−1. Precios no finitos o no positivos se filtran de la ventana
// antes del ajuste en vez de fallar; si quedan menos de MinChannelPoints
// devuelve un canal sin señal.
//
// SigmaDistance usa el último precio de la ventana filtrada; la desviación
// residual usa n−1 grados de libertad.
func FitChannel(window []float64) RegressionChannel {
	prices := make([]float64, 0, len(window))
	for _, p := range window {
		if usable(p) {
			prices = append(prices, p)
		}
	}

	n := len(prices)
	if n < MinChannelPoints {
		return RegressionChannel{Points: n}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, p := range prices {
		x := float64(i)
		sumX += x
		sumY += p
		sumXY += x * p
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return RegressionChannel{Points: n}
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	meanY := sumY / fn
	var ssRes, ssTot float64
	for i, p := range prices {
		fitted := intercept + slope*float64(i)
		ssRes += (p - fitted) * (p - fitted)
		ssTot += (p - meanY) * (p - meanY)
	}

	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}
	sigma := math.Sqrt(ssRes / float64(n-1))

	midline := intercept + slope*float64(n-1)
	last := prices[n-1]
	dist := 0.0
	if sigma > 0 {
		dist = (last - midline) / sigma
	}

	return RegressionChannel{
		Slope:         slope,
		Intercept:     intercept,
		RSquared:      rSquared,
		ResidualSigma: sigma,
		Midline:       midline,
		SigmaDistance: dist,
		Points:        n,
	}
}
