package backtest

// simulator.go — la caminata walk-forward multi-activo.
//
// El loop procesa el tiempo de calendario estrictamente en orden. Por fecha:
//  1. Circuit breaker: si el drawdown corriente supera el umbral, liquida
//     todo y termina la caminata — ninguna fecha posterior se procesa.
//  2. Salidas: cada posición abierta recalcula un canal fresco sobre su
//     ventana; TARGET/STOP tienen prioridad sobre TIME.
//  3. Entradas: solo con capacidad sobrante, vía el ranker; un ticker que
//     salió en esta misma fecha no es elegible hasta una fecha posterior
//     (la elegibilidad se evalúa contra el snapshot de posiciones al
//     comienzo de la fecha).
//
// Todo el estado (equity, drawdown, book) es propiedad exclusiva de una
// instancia: runs independientes pueden correr en paralelo sin compartir
// nada. No hay reloj, aleatoriedad ni estado global — inputs idénticos
// producen ledgers idénticos.

import (
	"sort"
	"time"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// Simulator ejecuta un run de la estrategia de canal sobre un universo.
type Simulator struct {
	params  domain.StrategyParameters
	series  map[string]*tickerSeries
	funds   map[string]domain.Fundamentals
	tickers []string // analizables, orden ascendente

	book    *PositionBook
	breaker *CircuitBreaker
	equity  float64
	peak    float64

	trades []domain.ClosedTrade
	curve  []domain.EquityPoint
}

// tickerSeries es la secuencia usable de un ticker con su cursor de caminata.
// El cursor apunta a la última observación con fecha <= la fecha simulada.
type tickerSeries struct {
	dates  []time.Time
	prices []float64
	cursor int
}

// advance mueve el cursor hasta la fecha dada. Las fechas simuladas avanzan
// monotónicamente, así que el cursor nunca retrocede.
func (ts *tickerSeries) advance(date time.Time) {
	for ts.cursor+1 < len(ts.dates) && !ts.dates[ts.cursor+1].After(date) {
		ts.cursor++
	}
}

// price devuelve el último precio disponible a la fecha actual del cursor.
func (ts *tickerSeries) price() (float64, bool) {
	if ts.cursor < 0 {
		return 0, false
	}
	return ts.prices[ts.cursor], true
}

// window devuelve las últimas windowSize observaciones hasta el cursor.
func (ts *tickerSeries) window(windowSize int) []float64 {
	if ts.cursor < 0 {
		return nil
	}
	end := ts.cursor + 1
	start := end - windowSize
	if start < 0 {
		start = 0
	}
	return ts.prices[start:end]
}

// NewSimulator construye un run sobre los precios y fundamentales dados.
// Barras no finitas o no positivas se filtran en el borde; tickers con menos
// de domain.MinChannelPoints observaciones usables quedan silenciosamente
// fuera del universo analizado.
func NewSimulator(
	params domain.StrategyParameters,
	prices map[string][]domain.PriceBar,
	fundamentals map[string]domain.Fundamentals,
) *Simulator {
	if params.WindowSize <= 0 {
		params.WindowSize = domain.DefaultParameters().WindowSize
	}
	if params.MaxPositions <= 0 {
		params.MaxPositions = 1
	}

	s := &Simulator{
		params:  params,
		series:  make(map[string]*tickerSeries, len(prices)),
		funds:   make(map[string]domain.Fundamentals, len(fundamentals)),
		book:    NewPositionBook(params.MaxPositions),
		breaker: NewCircuitBreaker(params.MaxDrawdownPct),
		equity:  1.0,
		peak:    1.0,
	}

	for ticker, bars := range prices {
		ts := &tickerSeries{cursor: -1}
		for _, bar := range bars {
			p, ok := bar.UsablePrice()
			if !ok {
				continue
			}
			ts.dates = append(ts.dates, bar.Date)
			ts.prices = append(ts.prices, p)
		}
		if len(ts.prices) < domain.MinChannelPoints {
			continue // histórico insuficiente: inelegible, no es un error
		}
		s.series[ticker] = ts
		s.funds[ticker] = fundamentals[ticker]
		s.tickers = append(s.tickers, ticker)
	}
	sort.Strings(s.tickers)

	return s
}

// TickersAnalyzed devuelve cuántos tickers superaron el mínimo de histórico.
func (s *Simulator) TickersAnalyzed() int { return len(s.tickers) }

// Run ejecuta la caminata completa y devuelve el resultado.
// Síncrono y CPU-bound; un presupuesto de tiempo, si se quiere, envuelve
// la llamada desde fuera.
func (s *Simulator) Run() domain.BacktestResult {
	axis := s.dateAxis()

	var tripped bool
	var trippedAt time.Time

	for step := s.params.WindowSize; step < len(axis); step++ {
		date := axis[step]
		for _, ticker := range s.tickers {
			s.series[ticker].advance(date)
		}

		// 1. Circuit breaker, antes de cualquier salida o entrada.
		if s.breaker.Check(s.drawdown()) {
			s.forceCloseAll(date, step)
			s.curve = append(s.curve, domain.EquityPoint{Date: date, Equity: s.equity, Drawdown: s.drawdown()})
			tripped = true
			trippedAt = date
			break
		}

		// Snapshot para elegibilidad de entrada: quien sale hoy no reentra hoy.
		heldAtOpen := s.book.Tickers()

		// 2. Salidas, cada posición contra un canal recalculado.
		for _, ticker := range heldAtOpen {
			s.evaluateExit(ticker, date, step)
		}

		// 3. Entradas, solo con capacidad sobrante.
		if s.book.SpareCapacity() > 0 {
			s.evaluateEntries(date, step, heldAtOpen)
		}

		s.curve = append(s.curve, domain.EquityPoint{Date: date, Equity: s.equity, Drawdown: s.drawdown()})
	}

	result := domain.BacktestResult{
		Params:                s.params,
		Trades:                s.trades,
		Summary:               domain.Aggregate(s.trades, s.params.MaxPositions),
		EquityCurve:           s.curve,
		FinalEquity:           s.equity,
		TickersAnalyzed:       len(s.tickers),
		CircuitBreakerTripped: tripped,
		CircuitBreakerDate:    trippedAt,
	}
	if !tripped && len(axis) > s.params.WindowSize {
		result.OpenSignals = s.finalSignals(axis[len(axis)-1])
	}
	return result
}

// dateAxis devuelve la unión ordenada de las fechas de todos los tickers.
func (s *Simulator) dateAxis() []time.Time {
	seen := make(map[time.Time]struct{})
	var axis []time.Time
	for _, ticker := range s.tickers {
		for _, d := range s.series[ticker].dates {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				axis = append(axis, d)
			}
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })
	return axis
}

// drawdown devuelve el drawdown corriente respecto del pico de equity.
func (s *Simulator) drawdown() float64 {
	if s.peak <= 0 {
		return 0
	}
	return (s.peak - s.equity) / s.peak
}

// evaluateExit recalcula el canal de una posición abierta y cierra si
// corresponde. Exactamente una razón de salida por trade; TARGET y STOP
// tienen prioridad sobre TIME.
func (s *Simulator) evaluateExit(ticker string, date time.Time, step int) {
	pos, ok := s.book.positions[ticker]
	if !ok {
		return
	}
	ts := s.series[ticker]
	price, ok := ts.price()
	if !ok {
		return
	}

	ch := domain.FitChannel(ts.window(s.params.WindowSize))
	dist := ch.SigmaDistance

	var reason domain.ExitReason
	switch pos.Side {
	case domain.SideLong:
		switch {
		case dist >= 0:
			reason = domain.ExitTarget
		case dist < -s.params.StopSigma:
			reason = domain.ExitStop
		}
	case domain.SideShort:
		switch {
		case dist <= 0:
			reason = domain.ExitTarget
		case dist > s.params.StopSigma:
			reason = domain.ExitStop
		}
	}
	if reason == "" && step-pos.EntryStep >= s.params.MaxHoldingDays {
		reason = domain.ExitTime
	}
	if reason == "" {
		return
	}

	s.closePosition(pos, date, step, price, reason)
}

// evaluateEntries corre el ranker sobre los tickers sin posición al comienzo
// de la fecha y abre los admitidos hasta agotar la capacidad sobrante.
func (s *Simulator) evaluateEntries(date time.Time, step int, heldAtOpen []string) {
	held := make(map[string]struct{}, len(heldAtOpen))
	for _, t := range heldAtOpen {
		held[t] = struct{}{}
	}

	var candidates []domain.CandidateSignal
	for _, ticker := range s.tickers {
		if _, was := held[ticker]; was {
			continue
		}
		ts := s.series[ticker]
		price, ok := ts.price()
		if !ok {
			continue
		}
		ch := domain.FitChannel(ts.window(s.params.WindowSize))
		cand, ok := EvaluateCandidate(ticker, date, price, ch, s.funds[ticker], s.params)
		if !ok {
			continue
		}
		candidates = append(candidates, cand)
	}

	for _, cand := range AdmitCandidates(candidates, s.book.SpareCapacity()) {
		s.book.Open(domain.OpenPosition{
			Ticker:          cand.Ticker,
			EntryDate:       date,
			EntryStep:       step,
			EntryPrice:      cand.Price,
			Side:            cand.Side,
			SigmaAtEntry:    cand.SigmaDistance,
			RSquaredAtEntry: cand.RSquared,
			SlopeAtEntry:    cand.Slope,
		})
	}
}

// closePosition consume la posición, registra el trade y actualiza equity:
// cada trade pesa 1/maxPositions de la cartera (presupuesto de riesgo igual
// por slot).
func (s *Simulator) closePosition(pos domain.OpenPosition, date time.Time, step int, exitPrice float64, reason domain.ExitReason) {
	if _, ok := s.book.Close(pos.Ticker); !ok {
		return
	}

	var ret float64
	if pos.EntryPrice > 0 {
		if pos.Side == domain.SideLong {
			ret = (exitPrice - pos.EntryPrice) / pos.EntryPrice
		} else {
			ret = (pos.EntryPrice - exitPrice) / pos.EntryPrice
		}
	}

	s.trades = append(s.trades, domain.ClosedTrade{
		Ticker:      pos.Ticker,
		EntryDate:   pos.EntryDate,
		ExitDate:    date,
		Side:        pos.Side,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   exitPrice,
		ReturnPct:   ret,
		HoldingDays: step - pos.EntryStep,
		ExitReason:  reason,
	})

	s.equity *= 1 + ret/float64(s.params.MaxPositions)
	if s.equity > s.peak {
		s.peak = s.equity
	}
}

// forceCloseAll liquida todas las posiciones abiertas al precio disponible
// de la fecha, con razón CIRCUIT_BREAKER, y vacía el book.
func (s *Simulator) forceCloseAll(date time.Time, step int) {
	for _, ticker := range s.book.Tickers() {
		pos := s.book.positions[ticker]
		price, ok := s.series[ticker].price()
		if !ok {
			price = pos.EntryPrice
		}
		s.closePosition(pos, date, step, price, domain.ExitCircuitBreaker)
	}
}

// finalSignals devuelve los candidatos que califican a la última fecha de
// la caminata, ordenados por convicción — las señales "vivas" del run.
func (s *Simulator) finalSignals(date time.Time) []domain.CandidateSignal {
	var signals []domain.CandidateSignal
	for _, ticker := range s.tickers {
		if s.book.Has(ticker) {
			continue
		}
		ts := s.series[ticker]
		price, ok := ts.price()
		if !ok {
			continue
		}
		ch := domain.FitChannel(ts.window(s.params.WindowSize))
		if sig, ok := EvaluateCandidate(ticker, date, price, ch, s.funds[ticker], s.params); ok {
			signals = append(signals, sig)
		}
	}
	return RankCandidates(signals)
}
