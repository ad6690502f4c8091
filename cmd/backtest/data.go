package main

// data.go — los modos de ingesta: importar CSVs locales y fetch remoto.

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Erchegos/ineqre-obx-sub002/internal/adapters/storage"
	"github.com/Erchegos/ineqre-obx-sub002/internal/adapters/yahoo"
)

// runImport importa un archivo CSV o todos los CSVs de un directorio.
// El ticker se deriva del nombre de cada archivo.
func runImport(ctx context.Context, store *storage.SQLiteStore, path string) {
	info, err := os.Stat(path)
	if err != nil {
		slog.Error("no se pudo acceder a la ruta de importación", "path", path, "err", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			slog.Error("no se pudo listar el directorio", "path", path, "err", err)
			os.Exit(1)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	} else {
		files = []string{path}
	}

	if len(files) == 0 {
		slog.Warn("ningún CSV para importar", "path", path)
		return
	}

	total := 0
	for _, f := range files {
		n, err := store.ImportCSVFile(ctx, f, "")
		if err != nil {
			slog.Error("importación fallida", "file", f, "err", err)
			continue
		}
		slog.Info("CSV importado", "file", filepath.Base(f), "rows", n)
		total += n
	}
	slog.Info("importación completa", "files", len(files), "rows", total)
}

// runFetch descarga histórico diario de Yahoo para cada símbolo y lo
// persiste. Símbolos de Oslo llevan el sufijo .OL en Yahoo; el store
// guarda el ticker limpio.
func runFetch(ctx context.Context, store *storage.SQLiteStore, client *yahoo.Client, symbols []string, rng string) {
	if len(symbols) == 0 {
		slog.Error("fetch sin símbolos; usa -fetch EQNR,DNB,TEL")
		os.Exit(1)
	}

	for _, symbol := range symbols {
		querySymbol := symbol
		if !strings.Contains(querySymbol, ".") {
			querySymbol += ".OL"
		}

		bars, err := client.FetchDailyBars(ctx, querySymbol, rng)
		if err != nil {
			slog.Error("fetch fallido", "symbol", querySymbol, "err", err)
			continue
		}

		ticker := strings.TrimSuffix(symbol, ".OL")
		if err := store.SavePriceBars(ctx, ticker, bars); err != nil {
			slog.Error("no se pudieron guardar las barras", "ticker", ticker, "err", err)
			continue
		}
		slog.Info("histórico guardado", "ticker", ticker, "bars", len(bars), "range", rng)
	}
}
