package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Erchegos/ineqre-obx-sub002/config"
	"github.com/Erchegos/ineqre-obx-sub002/internal/adapters/notify"
	"github.com/Erchegos/ineqre-obx-sub002/internal/adapters/storage"
	"github.com/Erchegos/ineqre-obx-sub002/internal/adapters/yahoo"
	"github.com/Erchegos/ineqre-obx-sub002/internal/transport"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	serve := flag.Bool("serve", false, "start the HTTP API instead of a one-shot run")
	importPath := flag.String("import", "", "import a CSV file (or directory of CSVs) and exit")
	fetch := flag.String("fetch", "", "fetch daily bars from Yahoo for the given symbols (comma-separated) and exit")
	rng := flag.String("range", "", "history range for -fetch: 1y|5y|10y|max (overrides config)")
	tickers := flag.String("tickers", "", "comma-separated tickers to backtest (default: all in store)")
	sweep := flag.Bool("sweep", false, "run a parameter sweep instead of a single backtest")
	table := flag.Bool("table", false, "print full ledger table (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Sin archivo de config también se puede correr, todo tiene default.
		cfg = config.Default()
		slog.Warn("config no encontrada, usando defaults", "path", *configPath)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *rng != "" {
		cfg.Yahoo.Range = *rng
	}
	setupLogger(cfg.Log)

	store, err := storage.NewSQLiteStore(cfg.Data.DSN)
	if err != nil {
		slog.Error("no se pudo abrir el store", "err", err, "dsn", cfg.Data.DSN)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *importPath != "":
		runImport(ctx, store, *importPath)

	case *fetch != "":
		runFetch(ctx, store, yahoo.NewClient(cfg.Yahoo.BaseURL), splitList(*fetch), cfg.Yahoo.Range)

	case *serve:
		slog.Info("API HTTP arrancando", "addr", cfg.HTTP.Addr, "dsn", cfg.Data.DSN)
		server := transport.NewServer(store, store, cfg.Backtest.Params, cfg.Backtest.HistoryLimit)
		if err := server.Run(cfg.HTTP.Addr); err != nil {
			slog.Error("server terminó con error", "err", err)
			os.Exit(1)
		}

	case *sweep:
		notifier := notify.NewConsole(true)
		runSweep(ctx, store, notifier, cfg, splitList(*tickers))

	default:
		notifier := notify.NewConsole(*table)
		runSingle(ctx, store, notifier, cfg, splitList(*tickers))
	}
}

// splitList parte una lista separada por comas, descartando vacíos.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
