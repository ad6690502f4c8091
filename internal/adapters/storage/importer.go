package storage

// importer.go — ingesta de CSVs de histórico al store.
//
// Acepta el formato de export de Yahoo Finance (Date,Open,High,Low,Close,
// Adj Close,Volume) y variantes de Euronext con menos columnas. Valores
// "null", vacíos o con coma decimal (exports noruegos) se toleran; una fila
// que no parsea se salta y se cuenta, nunca aborta la importación entera.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// ImportCSV lee barras del reader y las persiste bajo el ticker dado.
// Devuelve cuántas filas se importaron.
func (s *SQLiteStore) ImportCSV(ctx context.Context, ticker string, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // las variantes de Euronext traen menos columnas

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("storage.ImportCSV: header de %s: %w", ticker, err)
	}
	cols := columnIndex(header)
	dateCol, ok := cols["date"]
	if !ok {
		return 0, fmt.Errorf("storage.ImportCSV: %s: el CSV no tiene columna Date", ticker)
	}
	closeCol, ok := cols["close"]
	if !ok {
		return 0, fmt.Errorf("storage.ImportCSV: %s: el CSV no tiene columna Close", ticker)
	}
	adjCol, hasAdj := cols["adj close"]

	var bars []domain.PriceBar
	var skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if dateCol >= len(record) || closeCol >= len(record) {
			skipped++
			continue
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateCol]))
		if err != nil {
			skipped++
			continue
		}
		closePx, err := parseFlexFloat(record[closeCol])
		if err != nil {
			skipped++
			continue
		}

		adj := math.NaN()
		if hasAdj && adjCol < len(record) {
			if v, err := parseFlexFloat(record[adjCol]); err == nil {
				adj = v
			}
		}

		bars = append(bars, domain.PriceBar{Date: date, Close: closePx, AdjClose: adj})
	}

	if err := s.SavePriceBars(ctx, ticker, bars); err != nil {
		return 0, fmt.Errorf("storage.ImportCSV: %s: %w", ticker, err)
	}
	if skipped > 0 {
		slog.Warn("filas descartadas durante la importación",
			"ticker", ticker, "skipped", skipped, "imported", len(bars))
	}
	return len(bars), nil
}

// ImportCSVFile importa un archivo CSV; el ticker se deriva del nombre
// del archivo (OBX-EQNR.csv → EQNR) salvo que se pase explícito.
func (s *SQLiteStore) ImportCSVFile(ctx context.Context, path, ticker string) (int, error) {
	if ticker == "" {
		ticker = tickerFromFilename(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("storage.ImportCSVFile: open %q: %w", path, err)
	}
	defer f.Close()
	return s.ImportCSV(ctx, ticker, f)
}

// --- helpers internos ---

// columnIndex mapea nombres de columna normalizados a su índice.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// parseFlexFloat parsea un número tolerando "null", vacío y coma decimal.
func parseFlexFloat(raw string) (float64, error) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "null") {
		return 0, fmt.Errorf("valor vacío")
	}
	v = strings.ReplaceAll(v, ",", ".")
	return strconv.ParseFloat(v, 64)
}

// tickerFromFilename deriva el ticker del nombre del archivo:
// "data/OBX-EQNR.csv" → "EQNR", "dnb.csv" → "DNB".
func tickerFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndexByte(base, '-'); i >= 0 {
		base = base[i+1:]
	}
	return strings.ToUpper(base)
}
