package backtest

// ranker.go — filtra y puntúa candidatos de entrada bajo capacidad escasa.
//
// Gates (todos deben pasar):
//  1. Fundamentales: bookToMarket y earningsYield contra sus mínimos,
//     salvo que estén ausentes — un fundamental ausente nunca bloquea.
//  2. Calidad del canal: rSquared y |slope| contra sus mínimos.
// Señal (mutuamente excluyente):
//  - LONG: canal alcista con el precio hundido por debajo del umbral.
//  - SHORT: canal bajista con el precio disparado por encima.
// Convicción = rSquared × |sigmaDistance| × max(bookToMarket, 0.5).

import (
	"math"
	"sort"
	"time"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// missingBookToMarketMult es el multiplicador cuando bookToMarket está ausente.
const missingBookToMarketMult = 0.5

// EvaluateCandidate aplica los gates y la regla de señal sobre un canal ya
// ajustado. ok=false si el ticker no califica como candidato en esta fecha.
func EvaluateCandidate(
	ticker string,
	date time.Time,
	price float64,
	ch domain.RegressionChannel,
	f domain.Fundamentals,
	p domain.StrategyParameters,
) (domain.CandidateSignal, bool) {
	if !ch.HasSignal() {
		return domain.CandidateSignal{}, false
	}

	// Gate de fundamentales: solo bloquea si el valor está presente.
	if f.BookToMarket.Valid && f.BookToMarket.Value < p.MinBookToMarket {
		return domain.CandidateSignal{}, false
	}
	if f.EarningsYield.Valid && f.EarningsYield.Value < p.MinEarningsYield {
		return domain.CandidateSignal{}, false
	}

	// Gate de calidad del ajuste.
	if ch.RSquared < p.MinRSquared || math.Abs(ch.Slope) < p.MinSlope {
		return domain.CandidateSignal{}, false
	}

	var side domain.Side
	switch {
	case ch.Slope > 0 && ch.SigmaDistance < -p.EntryThresholdSigma:
		side = domain.SideLong
	case ch.Slope < 0 && ch.SigmaDistance > p.EntryThresholdSigma:
		side = domain.SideShort
	default:
		return domain.CandidateSignal{}, false
	}

	mult := missingBookToMarketMult
	if f.BookToMarket.Valid {
		mult = math.Max(f.BookToMarket.Value, missingBookToMarketMult)
	}
	conviction := ch.RSquared * math.Abs(ch.SigmaDistance) * mult

	return domain.CandidateSignal{
		Ticker:        ticker,
		Date:          date,
		Side:          side,
		Price:         price,
		Conviction:    conviction,
		SigmaDistance: ch.SigmaDistance,
		RSquared:      ch.RSquared,
		Slope:         ch.Slope,
	}, true
}

// RankCandidates ordena candidatos por convicción descendente, con ticker
// ascendente como desempate determinista — el resultado no depende del
// orden de iteración de ningún map.
func RankCandidates(candidates []domain.CandidateSignal) []domain.CandidateSignal {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Conviction != candidates[j].Conviction {
			return candidates[i].Conviction > candidates[j].Conviction
		}
		return candidates[i].Ticker < candidates[j].Ticker
	})
	return candidates
}

// AdmitCandidates devuelve los top slots candidatos ya ordenados.
// slots <= 0 no admite ninguno.
func AdmitCandidates(candidates []domain.CandidateSignal, slots int) []domain.CandidateSignal {
	ranked := RankCandidates(candidates)
	if slots <= 0 {
		return nil
	}
	if len(ranked) > slots {
		ranked = ranked[:slots]
	}
	return ranked
}
