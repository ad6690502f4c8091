package yahoo

// client.go — fetcher de histórico diario vía el endpoint chart v8 de Yahoo.
//
// Yahoo no documenta límites, pero castiga ráfagas con 429: el cliente
// serializa las requests con un rate limiter y reintenta con backoff
// exponencial. Los arrays del chart traen null en festivos y huecos, por
// eso los campos de quote son punteros — un null se descarta, no se
// convierte en 0.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	defaultRange   = "10y"

	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
)

// Client es un cliente HTTP con rate limiting para el endpoint chart.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient crea un cliente contra la URL base dada ("" usa la de Yahoo).
// El limiter permite ~2 requests/segundo, suficiente para universos OBX.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// chartResponse es el subset del JSON de /v8/finance/chart que nos importa.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars descarga el histórico diario del símbolo para el rango
// dado ("1y", "5y", "10y", "max"; "" usa 10y). Las barras vuelven en orden
// cronológico ascendente, sin los nulls de festivos.
func (c *Client) FetchDailyBars(ctx context.Context, symbol, rng string) ([]domain.PriceBar, error) {
	if rng == "" {
		rng = defaultRange
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("yahoo.FetchDailyBars: %s: %w", symbol, err)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("yahoo.FetchDailyBars: %s: decode: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo.FetchDailyBars: %s: %s (%s)",
			symbol, resp.Chart.Error.Description, resp.Chart.Error.Code)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo.FetchDailyBars: %s: respuesta sin result", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo.FetchDailyBars: %s: respuesta sin quote", symbol)
	}
	closes := result.Indicators.Quote[0].Close

	var adjs []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjs = result.Indicators.AdjClose[0].AdjClose
	}

	var bars []domain.PriceBar
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // festivo o hueco de la fuente
		}
		bar := domain.PriceBar{
			Date:     time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close:    *closes[i],
			AdjClose: math.NaN(),
		}
		if i < len(adjs) && adjs[i] != nil {
			bar.AdjClose = *adjs[i]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// get hace la request respetando el limiter, con reintentos y backoff
// exponencial ante 429 y 5xx.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	backoff := initialBackoff

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; obx-backtest/1.0)")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read body: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
		}
	}
	return nil, fmt.Errorf("agotados %d reintentos: %w", maxRetries, lastErr)
}

// truncate recorta el body para mensajes de error legibles.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
