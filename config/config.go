package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// Config es la configuración completa del backtester.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	Data     DataConfig     `yaml:"data"`
	HTTP     HTTPConfig     `yaml:"http"`
	Yahoo    YahooConfig    `yaml:"yahoo"`
	Log      LogConfig      `yaml:"log"`
}

// BacktestConfig son los parámetros por defecto de la estrategia más el
// tope de histórico a cargar por ticker.
type BacktestConfig struct {
	Params       domain.StrategyParameters `yaml:",inline"`
	HistoryLimit int                       `yaml:"history_limit"` // barras por ticker; -1 = todo el histórico
}

// DataConfig controla dónde se persisten precios y runs.
type DataConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// HTTPConfig controla el servidor de la API.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// YahooConfig controla el fetcher de histórico remoto.
type YahooConfig struct {
	BaseURL string `yaml:"base_url"`
	Range   string `yaml:"range"` // "1y", "5y", "10y", "max"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve una configuración usable sin archivo YAML.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OBX_DSN"); v != "" {
		cfg.Data.DSN = v
	}
	if v := os.Getenv("OBX_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	def := domain.DefaultParameters()
	p := &cfg.Backtest.Params
	if p.EntryThresholdSigma <= 0 {
		p.EntryThresholdSigma = def.EntryThresholdSigma
	}
	if p.StopSigma <= 0 {
		p.StopSigma = def.StopSigma
	}
	if p.MaxHoldingDays <= 0 {
		p.MaxHoldingDays = def.MaxHoldingDays
	}
	if p.MinRSquared <= 0 {
		p.MinRSquared = def.MinRSquared
	}
	if p.MinSlope <= 0 {
		p.MinSlope = def.MinSlope
	}
	if p.MinBookToMarket <= 0 {
		p.MinBookToMarket = def.MinBookToMarket
	}
	if p.WindowSize <= 0 {
		p.WindowSize = def.WindowSize
	}
	if p.MaxPositions <= 0 {
		p.MaxPositions = def.MaxPositions
	}
	if p.MaxDrawdownPct <= 0 {
		p.MaxDrawdownPct = def.MaxDrawdownPct
	}
	// MinEarningsYield: 0 es un valor legítimo (solo excluye pérdidas), se respeta.

	if cfg.Backtest.HistoryLimit == 0 {
		cfg.Backtest.HistoryLimit = 1260 // ~5 años bursátiles
	}
	if cfg.Backtest.HistoryLimit < 0 {
		cfg.Backtest.HistoryLimit = 0 // el provider interpreta 0 como "sin tope"
	}
	if cfg.Data.DSN == "" {
		cfg.Data.DSN = "obx-backtest.db"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Yahoo.BaseURL == "" {
		cfg.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Yahoo.Range == "" {
		cfg.Yahoo.Range = "10y"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
