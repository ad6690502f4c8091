package transport

// http.go — la API HTTP del backtester.
//
// Tres endpoints:
//   POST /api/v1/backtest/channel  corre un backtest y lo persiste
//   GET  /api/v1/runs              lista los runs guardados
//   GET  /healthz                  liveness
//
// El request de backtest usa punteros: un campo ausente hereda el default
// configurado, un campo presente lo sobreescribe. Así el JSON {"entry_
// threshold_sigma": 1.5} ajusta solo ese parámetro.

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Erchegos/ineqre-obx-sub002/internal/backtest"
	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
	"github.com/Erchegos/ineqre-obx-sub002/internal/ports"
)

// maxCurvePoints acota la curva de equity en la respuesta JSON.
const maxCurvePoints = 500

// Server expone el backtester sobre HTTP.
type Server struct {
	provider     ports.PriceHistoryProvider
	runs         ports.RunStorage
	baseParams   domain.StrategyParameters
	historyLimit int
	engine       *gin.Engine
}

// NewServer construye el server con sus dependencias y registra las rutas.
func NewServer(
	provider ports.PriceHistoryProvider,
	runs ports.RunStorage,
	baseParams domain.StrategyParameters,
	historyLimit int,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		provider:     provider,
		runs:         runs,
		baseParams:   baseParams,
		historyLimit: historyLimit,
		engine:       gin.New(),
	}
	s.engine.Use(gin.Recovery())

	s.engine.GET("/healthz", s.handleHealth)
	api := s.engine.Group("/api/v1")
	api.POST("/backtest/channel", s.handleBacktest)
	api.GET("/runs", s.handleRuns)

	return s
}

// Handler devuelve el http.Handler del server, útil para httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Run arranca el server en la dirección dada, bloqueando hasta error.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// channelRequest es el body de POST /api/v1/backtest/channel. Los campos
// nil heredan el default configurado.
type channelRequest struct {
	Tickers             []string `json:"tickers"`
	EntryThresholdSigma *float64 `json:"entry_threshold_sigma"`
	StopSigma           *float64 `json:"stop_sigma"`
	MaxHoldingDays      *int     `json:"max_holding_days"`
	MinRSquared         *float64 `json:"min_r_squared"`
	MinSlope            *float64 `json:"min_slope"`
	MinBookToMarket     *float64 `json:"min_book_to_market"`
	MinEarningsYield    *float64 `json:"min_earnings_yield"`
	WindowSize          *int     `json:"window_size"`
	MaxPositions        *int     `json:"max_positions"`
	MaxDrawdownPct      *float64 `json:"max_drawdown_pct"`
}

// params materializa los parámetros del run partiendo de los defaults.
func (r channelRequest) params(base domain.StrategyParameters) domain.StrategyParameters {
	if r.EntryThresholdSigma != nil {
		base.EntryThresholdSigma = *r.EntryThresholdSigma
	}
	if r.StopSigma != nil {
		base.StopSigma = *r.StopSigma
	}
	if r.MaxHoldingDays != nil {
		base.MaxHoldingDays = *r.MaxHoldingDays
	}
	if r.MinRSquared != nil {
		base.MinRSquared = *r.MinRSquared
	}
	if r.MinSlope != nil {
		base.MinSlope = *r.MinSlope
	}
	if r.MinBookToMarket != nil {
		base.MinBookToMarket = *r.MinBookToMarket
	}
	if r.MinEarningsYield != nil {
		base.MinEarningsYield = *r.MinEarningsYield
	}
	if r.WindowSize != nil {
		base.WindowSize = *r.WindowSize
	}
	if r.MaxPositions != nil {
		base.MaxPositions = *r.MaxPositions
	}
	if r.MaxDrawdownPct != nil {
		base.MaxDrawdownPct = *r.MaxDrawdownPct
	}
	return base
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleBacktest(c *gin.Context) {
	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body inválido: " + err.Error()})
		return
	}

	params := req.params(s.baseParams)

	prices, funds, err := backtest.LoadUniverse(c.Request.Context(), s.provider, req.Tickers, s.historyLimit)
	if err != nil {
		slog.Error("no se pudo cargar el universo", "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	started := time.Now()
	result := backtest.NewSimulator(params, prices, funds).Run()
	elapsed := time.Since(started)

	run := domain.BacktestRun{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Result:    result,
	}
	if err := s.runs.SaveRun(c.Request.Context(), run); err != nil {
		// El run salió bien; perder la persistencia no invalida la respuesta.
		slog.Error("no se pudo persistir el run", "run_id", run.ID, "error", err)
	}

	slog.Info("backtest terminado",
		"run_id", run.ID,
		"tickers", result.TickersAnalyzed,
		"trades", result.Summary.TotalTrades,
		"total_return", result.Summary.TotalReturn,
		"breaker", result.CircuitBreakerTripped,
		"elapsed", elapsed)

	result.EquityCurve = subsampleCurve(result.EquityCurve, maxCurvePoints)
	c.JSON(http.StatusOK, gin.H{
		"run_id":     run.ID,
		"created_at": run.CreatedAt,
		"result":     result,
	})
}

func (s *Server) handleRuns(c *gin.Context) {
	limit := 50
	if v, ok := c.GetQuery("limit"); ok {
		if n, err := parsePositiveInt(v); err == nil {
			limit = n
		}
	}

	records, err := s.runs.GetRuns(c.Request.Context(), limit)
	if err != nil {
		slog.Error("no se pudieron listar los runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []domain.RunRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": records})
}

// --- helpers internos ---

// subsampleCurve reduce la curva a como mucho max puntos, conservando
// siempre el último (el estado final del run).
func subsampleCurve(curve []domain.EquityPoint, max int) []domain.EquityPoint {
	if len(curve) <= max || max <= 0 {
		return curve
	}
	stride := (len(curve) + max - 1) / max
	out := make([]domain.EquityPoint, 0, max)
	for i := 0; i < len(curve); i += stride {
		out = append(out, curve[i])
	}
	if last := curve[len(curve)-1]; out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}

func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("limit debe ser positivo")
	}
	return n, nil
}
