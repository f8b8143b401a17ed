package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de atomicswipe.
type Config struct {
	Solana  SolanaConfig       `yaml:"solana"`
	Jupiter JupiterConfig      `yaml:"jupiter"`
	Scanner ScannerConfig      `yaml:"scanner"`
	Prices  map[string]float64 `yaml:"prices"` // overrides de la tabla estática USD
	Wallet  WalletConfig       `yaml:"wallet"`
	Redis   RedisConfig        `yaml:"redis"`
	Server  ServerConfig       `yaml:"server"`
	Storage StorageConfig      `yaml:"storage"`
	Log     LogConfig          `yaml:"log"`
}

// SolanaConfig controla el cliente RPC.
type SolanaConfig struct {
	RPCEndpoint      string `yaml:"rpc_endpoint"`
	ConfirmTimeoutMs int    `yaml:"confirm_timeout_ms"`
}

// JupiterConfig controla el cliente del routing API.
type JupiterConfig struct {
	BaseURL       string  `yaml:"base_url"`
	SlippageBps   int     `yaml:"slippage_bps"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	TimeoutMs     int     `yaml:"timeout_ms"`
}

// ScannerConfig controla el gate de inclusión y el ritmo del scan.
type ScannerConfig struct {
	MinProfitUSD      float64 `yaml:"min_profit_usd"`
	MinProfitPercent  float64 `yaml:"min_profit_percent"`
	RefreshIntervalMs int     `yaml:"refresh_interval_ms"`
	QuoteTimeoutMs    int     `yaml:"quote_timeout_ms"`
	PairDelayMs       int     `yaml:"pair_delay_ms"`
	TokenDelayMs      int     `yaml:"token_delay_ms"`
}

// WalletConfig indica de dónde sale la keypair local. Ambos vacíos = sin wallet.
type WalletConfig struct {
	KeypairPath string `yaml:"keypair_path"`
	PrivateKey  string `yaml:"-"` // solo por env, nunca en el YAML
}

// RedisConfig habilita el lookup de precios y el publisher. Addr vacío = deshabilitado.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
}

// ServerConfig controla la API HTTP.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig controla dónde se persiste el journal.
type StorageConfig struct {
	JournalDSN string `yaml:"journal_dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Un archivo YAML inexistente no es error: quedan defaults + variables de entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	cfg := baseline()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// RefreshInterval devuelve el intervalo del refresco automático.
func (c *Config) RefreshInterval() time.Duration {
	return ms(c.Scanner.RefreshIntervalMs)
}

// QuoteTimeout devuelve el timeout por request de quote.
func (c *Config) QuoteTimeout() time.Duration {
	return ms(c.Scanner.QuoteTimeoutMs)
}

// ConfirmTimeout devuelve cuánto esperar la confirmación de cada pierna.
func (c *Config) ConfirmTimeout() time.Duration {
	return ms(c.Solana.ConfirmTimeoutMs)
}

// JupiterTimeout acota cada request HTTP al routing API.
func (c *Config) JupiterTimeout() time.Duration {
	return ms(c.Jupiter.TimeoutMs)
}

func (c *Config) PairDelay() time.Duration  { return ms(c.Scanner.PairDelayMs) }
func (c *Config) TokenDelay() time.Duration { return ms(c.Scanner.TokenDelayMs) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	str := map[string]*string{
		"SOLANA_RPC_ENDPOINT": &cfg.Solana.RPCEndpoint,
		"JUPITER_API_URL":     &cfg.Jupiter.BaseURL,
		"WALLET_KEYPAIR_PATH": &cfg.Wallet.KeypairPath,
		"WALLET_PRIVATE_KEY":  &cfg.Wallet.PrivateKey,
		"REDIS_ADDR":          &cfg.Redis.Addr,
		"REDIS_PASSWORD":      &cfg.Redis.Password,
		"HTTP_ADDR":           &cfg.Server.Addr,
		"JOURNAL_DSN":         &cfg.Storage.JournalDSN,
		"LOG_LEVEL":           &cfg.Log.Level,
		"LOG_FORMAT":          &cfg.Log.Format,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REFRESH_INTERVAL_MS": &cfg.Scanner.RefreshIntervalMs,
		"QUOTE_TIMEOUT_MS":    &cfg.Scanner.QuoteTimeoutMs,
		"MAX_SLIPPAGE_BPS":    &cfg.Jupiter.SlippageBps,
		"REDIS_DB":            &cfg.Redis.DB,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"MIN_PROFIT_USD":          &cfg.Scanner.MinProfitUSD,
		"MIN_PROFIT_PERCENT":      &cfg.Scanner.MinProfitPercent,
		"JUPITER_RATE_PER_SECOND": &cfg.Jupiter.RatePerSecond,
	}
	for key, dst := range floats {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = f
	}
	return nil
}

// baseline contiene los valores donde 0 es una elección válida del usuario
// (umbrales, pausas). El YAML y el env escriben encima.
func baseline() Config {
	return Config{
		Scanner: ScannerConfig{
			MinProfitUSD:     0.1,
			MinProfitPercent: 0.01,
			PairDelayMs:      200,
			TokenDelayMs:     300,
		},
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Solana.RPCEndpoint == "" {
		cfg.Solana.RPCEndpoint = "https://api.mainnet-beta.solana.com"
	}
	if cfg.Solana.ConfirmTimeoutMs <= 0 {
		cfg.Solana.ConfirmTimeoutMs = 60_000
	}
	if cfg.Jupiter.BaseURL == "" {
		cfg.Jupiter.BaseURL = "https://lite-api.jup.ag/swap/v1"
	}
	if cfg.Jupiter.SlippageBps <= 0 {
		cfg.Jupiter.SlippageBps = 50
	}
	if cfg.Jupiter.RatePerSecond <= 0 {
		cfg.Jupiter.RatePerSecond = 1
	}
	if cfg.Jupiter.TimeoutMs <= 0 {
		cfg.Jupiter.TimeoutMs = 10_000
	}
	if cfg.Scanner.RefreshIntervalMs <= 0 {
		cfg.Scanner.RefreshIntervalMs = 30_000
	}
	if cfg.Scanner.QuoteTimeoutMs <= 0 {
		cfg.Scanner.QuoteTimeoutMs = 10_000
	}
	if cfg.Scanner.PairDelayMs < 0 {
		cfg.Scanner.PairDelayMs = 0
	}
	if cfg.Scanner.TokenDelayMs < 0 {
		cfg.Scanner.TokenDelayMs = 0
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Storage.JournalDSN == "" {
		cfg.Storage.JournalDSN = ":memory:"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
