package domain

import (
	"math"
	"time"
)

// PriceBar es una observación diaria de precio para un ticker.
// Inmutable: el provider la entrega una vez por run y nadie la modifica.
type PriceBar struct {
	Date     time.Time `json:"date"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"` // NaN si la fuente no lo provee
}

// UsablePrice devuelve el precio preferido del bar: adj_close si es finito
// y positivo, close como fallback. ok=false si ninguno de los dos sirve.
func (b PriceBar) UsablePrice() (price float64, ok bool) {
	if usable(b.AdjClose) {
		return b.AdjClose, true
	}
	if usable(b.Close) {
		return b.Close, true
	}
	return 0, false
}

// usable devuelve true si el precio es finito y positivo.
func usable(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}

// Fundamental es un valor numérico que puede estar ausente.
// El marcador explícito evita propagar NaN/sentinelas ambiguos al algoritmo.
type Fundamental struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// NewFundamental construye un Fundamental desde un valor crudo.
// Valores no finitos se convierten en "ausente" en el borde de ingesta.
func NewFundamental(v float64) Fundamental {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Fundamental{}
	}
	return Fundamental{Value: v, Valid: true}
}

// Fundamentals es el snapshot de fundamentales de un ticker.
//
// Nota: es UN snapshot global por run (el más reciente), no point-in-time.
// Es una simplificación deliberada heredada del sistema original: las fechas
// tempranas de la caminata ven fundamentales que aún no se conocían.
type Fundamentals struct {
	EarningsYield Fundamental `json:"earnings_yield"`
	BookToMarket  Fundamental `json:"book_to_market"`
}
