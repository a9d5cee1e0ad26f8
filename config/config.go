package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del journal.
type Config struct {
	Journal JournalConfig `yaml:"journal"`
	Bybit   BybitConfig   `yaml:"bybit"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// JournalConfig controla la ventana de histórico y el modo periódico.
type JournalConfig struct {
	LookbackDays    int `yaml:"lookback_days"`    // histórico a descargar, 730 = dos años
	IntervalMinutes int `yaml:"interval_minutes"` // periodo entre syncs en modo daemon
}

// BybitConfig contiene el endpoint y los límites del cliente de Bybit.
// Las keys se leen solo del entorno (.env), nunca del YAML.
type BybitConfig struct {
	BaseURL    string  `yaml:"base_url"`
	Category   string  `yaml:"category"`
	PageLimit  int     `yaml:"page_limit"`
	MaxPages   int     `yaml:"max_pages"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	RecvWindow int     `yaml:"recv_window"`

	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
}

// ServerConfig controla el servidor HTTP.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"` // frontend opcional servido en "/"
}

// StorageConfig controla dónde se persisten los fills.
type StorageConfig struct {
	DSN     string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
	Enabled bool   `yaml:"enabled"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Si path no existe se usan solo defaults y entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin archivo: defaults + entorno
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Lookback devuelve la ventana de histórico como time.Duration.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Journal.LookbackDays) * 24 * time.Hour
}

// SyncInterval devuelve el periodo entre syncs como time.Duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Journal.IntervalMinutes) * time.Minute
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BYBIT_API_KEY"); v != "" {
		cfg.Bybit.APIKey = v
	}
	if v := os.Getenv("BYBIT_API_SECRET"); v != "" {
		cfg.Bybit.APISecret = v
	}
	if v := os.Getenv("BYBIT_BASE_URL"); v != "" {
		cfg.Bybit.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("JOURNAL_DSN"); v != "" {
		cfg.Storage.DSN = v
		cfg.Storage.Enabled = true
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Journal.LookbackDays <= 0 {
		cfg.Journal.LookbackDays = 730
	}
	if cfg.Journal.IntervalMinutes <= 0 {
		cfg.Journal.IntervalMinutes = 15
	}
	if cfg.Bybit.BaseURL == "" {
		cfg.Bybit.BaseURL = "https://api.bybit.com"
	}
	if cfg.Bybit.Category == "" {
		cfg.Bybit.Category = "spot"
	}
	if cfg.Bybit.PageLimit <= 0 {
		cfg.Bybit.PageLimit = 100
	}
	if cfg.Bybit.MaxPages <= 0 {
		cfg.Bybit.MaxPages = 1000
	}
	if cfg.Bybit.RatePerSec <= 0 {
		cfg.Bybit.RatePerSec = 6
	}
	if cfg.Bybit.RecvWindow <= 0 {
		cfg.Bybit.RecvWindow = 5000
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":3000"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "spotjournal.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
