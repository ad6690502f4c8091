package storage

// sqlite.go — el store local de precios, fundamentales y runs.
//
// Estrategia:
//   - `prices_daily`: una fila por (ticker, fecha), UPSERT idempotente.
//     Importar el mismo CSV dos veces deja la tabla igual.
//   - `fundamentals`: un snapshot por ticker, columnas NULL-ables — un
//     NULL en DB se traduce a "ausente" en el dominio, nunca a 0.
//   - `runs` + `run_trades`: cabecera del run con los parámetros en JSON
//     y el ledger normalizado, guardados en una transacción.
//
// Los queries de histórico bajan DESC con LIMIT y se invierten en memoria:
// "las últimas N barras" sin escanear todo el histórico del ticker.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Barras diarias, una fila por (ticker, fecha)
CREATE TABLE IF NOT EXISTS prices_daily (
    ticker    TEXT NOT NULL,
    date      TEXT NOT NULL, -- YYYY-MM-DD
    close     REAL NOT NULL,
    adj_close REAL,
    PRIMARY KEY (ticker, date)
);

-- Snapshot de fundamentales, uno por ticker
CREATE TABLE IF NOT EXISTS fundamentals (
    ticker         TEXT PRIMARY KEY,
    earnings_yield REAL,
    book_to_market REAL,
    updated_at     DATETIME NOT NULL
);

-- Cabecera de cada run persistido
CREATE TABLE IF NOT EXISTS runs (
    id               TEXT PRIMARY KEY,
    created_at       DATETIME NOT NULL,
    params           TEXT NOT NULL, -- StrategyParameters en JSON
    tickers_analyzed INTEGER NOT NULL DEFAULT 0,
    total_trades     INTEGER NOT NULL DEFAULT 0,
    total_return     REAL    NOT NULL DEFAULT 0,
    win_rate         REAL    NOT NULL DEFAULT 0,
    max_drawdown     REAL    NOT NULL DEFAULT 0,
    final_equity     REAL    NOT NULL DEFAULT 1,
    breaker_tripped  INTEGER NOT NULL DEFAULT 0
);

-- Ledger normalizado de cada run
CREATE TABLE IF NOT EXISTS run_trades (
    run_id       TEXT NOT NULL REFERENCES runs(id),
    seq          INTEGER NOT NULL,
    ticker       TEXT NOT NULL,
    side         TEXT NOT NULL,
    entry_date   TEXT NOT NULL,
    exit_date    TEXT NOT NULL,
    entry_price  REAL NOT NULL,
    exit_price   REAL NOT NULL,
    return_pct   REAL NOT NULL,
    holding_days INTEGER NOT NULL,
    exit_reason  TEXT NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_prices_ticker ON prices_daily(ticker, date DESC);
CREATE INDEX IF NOT EXISTS idx_runs_created  ON runs(created_at DESC);
`

// dateLayout es el formato de fecha de prices_daily.
const dateLayout = "2006-01-02"

// SQLiteStore implementa ports.PriceHistoryProvider y ports.RunStorage
// usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica
// el schema. ":memory:" sirve para tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ListTickers devuelve todos los tickers con precios, ordenados ascendente.
func (s *SQLiteStore) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT ticker FROM prices_daily ORDER BY ticker ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.ListTickers: query: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("storage.ListTickers: scan: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// GetPriceHistory devuelve hasta limit barras del ticker en orden ascendente.
// limit <= 0 devuelve todo el histórico. Filas con close <= 0 se descartan
// ya en SQL; son basura de la fuente, no precios.
func (s *SQLiteStore) GetPriceHistory(ctx context.Context, ticker string, limit int) ([]domain.PriceBar, error) {
	query := `
		SELECT date, close, adj_close
		FROM prices_daily
		WHERE ticker = ? AND close > 0
		ORDER BY date DESC`
	args := []any{ticker}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage.GetPriceHistory: query %s: %w", ticker, err)
	}
	defer rows.Close()

	var bars []domain.PriceBar
	for rows.Next() {
		var dateStr string
		var closePx float64
		var adj sql.NullFloat64
		if err := rows.Scan(&dateStr, &closePx, &adj); err != nil {
			return nil, fmt.Errorf("storage.GetPriceHistory: scan %s: %w", ticker, err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("storage.GetPriceHistory: fecha %q de %s: %w", dateStr, ticker, err)
		}
		bar := domain.PriceBar{Date: date, Close: closePx, AdjClose: math.NaN()}
		if adj.Valid {
			bar.AdjClose = adj.Float64
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.GetPriceHistory: rows %s: %w", ticker, err)
	}

	// DESC + LIMIT trae "las últimas N"; el consumidor quiere orden cronológico.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

// GetFundamentals devuelve el snapshot del ticker. Sin fila o con columnas
// NULL devuelve campos ausentes — nunca es un error.
func (s *SQLiteStore) GetFundamentals(ctx context.Context, ticker string) (domain.Fundamentals, error) {
	var ey, btm sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT earnings_yield, book_to_market FROM fundamentals WHERE ticker = ?`,
		ticker,
	).Scan(&ey, &btm)
	if err == sql.ErrNoRows {
		return domain.Fundamentals{}, nil
	}
	if err != nil {
		return domain.Fundamentals{}, fmt.Errorf("storage.GetFundamentals: %s: %w", ticker, err)
	}

	var f domain.Fundamentals
	if ey.Valid {
		f.EarningsYield = domain.NewFundamental(ey.Float64)
	}
	if btm.Valid {
		f.BookToMarket = domain.NewFundamental(btm.Float64)
	}
	return f, nil
}

// SavePriceBars hace upsert de las barras del ticker. Idempotente: reimportar
// el mismo rango sobreescribe con los mismos valores.
func (s *SQLiteStore) SavePriceBars(ctx context.Context, ticker string, bars []domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SavePriceBars: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prices_daily (ticker, date, close, adj_close)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			close     = excluded.close,
			adj_close = excluded.adj_close
	`)
	if err != nil {
		return fmt.Errorf("storage.SavePriceBars: prepare: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		var adj any // NULL si la fuente no trae adj_close
		if !math.IsNaN(bar.AdjClose) && !math.IsInf(bar.AdjClose, 0) {
			adj = bar.AdjClose
		}
		if _, err := stmt.ExecContext(ctx, ticker, bar.Date.Format(dateLayout), bar.Close, adj); err != nil {
			return fmt.Errorf("storage.SavePriceBars: upsert %s %s: %w", ticker, bar.Date.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SavePriceBars: commit: %w", err)
	}
	return nil
}

// SaveFundamentals hace upsert del snapshot del ticker. Campos ausentes
// se guardan como NULL, no como 0.
func (s *SQLiteStore) SaveFundamentals(ctx context.Context, ticker string, f domain.Fundamentals) error {
	var ey, btm any
	if f.EarningsYield.Valid {
		ey = f.EarningsYield.Value
	}
	if f.BookToMarket.Valid {
		btm = f.BookToMarket.Value
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fundamentals (ticker, earnings_yield, book_to_market, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			earnings_yield = excluded.earnings_yield,
			book_to_market = excluded.book_to_market,
			updated_at     = excluded.updated_at
	`, ticker, ey, btm, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage.SaveFundamentals: %s: %w", ticker, err)
	}
	return nil
}

// SaveRun guarda la cabecera del run y su ledger en una transacción.
func (s *SQLiteStore) SaveRun(ctx context.Context, run domain.BacktestRun) error {
	paramsJSON, err := json.Marshal(run.Result.Params)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: marshal params: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	tripped := 0
	if run.Result.CircuitBreakerTripped {
		tripped = 1
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, created_at, params, tickers_analyzed, total_trades,
			 total_return, win_rate, max_drawdown, final_equity, breaker_tripped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC(),
		string(paramsJSON),
		run.Result.TickersAnalyzed,
		run.Result.Summary.TotalTrades,
		run.Result.Summary.TotalReturn,
		run.Result.Summary.WinRate,
		run.Result.Summary.MaxDrawdown,
		run.Result.FinalEquity,
		tripped,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_trades
			(run_id, seq, ticker, side, entry_date, exit_date,
			 entry_price, exit_price, return_pct, holding_days, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare trades: %w", err)
	}
	defer stmt.Close()

	for i, t := range run.Result.Trades {
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, t.Ticker, string(t.Side),
			t.EntryDate.Format(dateLayout), t.ExitDate.Format(dateLayout),
			t.EntryPrice, t.ExitPrice, t.ReturnPct, t.HoldingDays, string(t.ExitReason),
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert trade %d de %s: %w", i, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetRuns devuelve los últimos runs guardados, más recientes primero.
// limit <= 0 aplica un tope por defecto de 50.
func (s *SQLiteStore) GetRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, params, tickers_analyzed, total_trades,
		       total_return, win_rate, max_drawdown, breaker_tripped
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var records []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var paramsJSON string
		var tripped int
		if err := rows.Scan(
			&rec.ID, &rec.CreatedAt, &paramsJSON,
			&rec.TickersAnalyzed, &rec.TotalTrades,
			&rec.TotalReturn, &rec.WinRate, &rec.MaxDrawdown, &tripped,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &rec.Params); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: params de %s: %w", rec.ID, err)
		}
		rec.CircuitBreakerTripped = tripped == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
