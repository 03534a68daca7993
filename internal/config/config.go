// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, storage selection, the chat pipeline knobs (rate window, message
// size, plan quotas), the language-model client, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "hotel-concierge")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// OpenAIConfig configures the language-model fallback. An empty APIKey puts
// the chat pipeline into placeholder ("dummy") mode.
type OpenAIConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	MaxOutputTokens int
	Temperature     float64
	Timeout         time.Duration
}

// ChatConfig holds the knobs of the reply pipeline.
type ChatConfig struct {
	RatePerWindow   int           // RATE_LIMIT_PER_MINUTE
	RateWindow      time.Duration // RATE_WINDOW
	MaxMessageChars int           // MAX_MESSAGE_CHARS
	BasicDailyCap   int           // BASIC_DAILY_AI_CALL_LIMIT
	ProDailyCap     int           // PRO_DAILY_AI_CALL_LIMIT
	FAQRulesPath    string        // optional YAML rule table
	TenantsPath     string        // optional YAML credential registry
	CounterBackend  string        // memory|redis
	RedisURL        string
}

// Counter backends.
const (
	CounterMemory = "memory"
	CounterRedis  = "redis"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 30s
	IdleTimeout       time.Duration // e.g. 60s
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int    // bytes
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route

	// Storage
	DBDriver    string // sqlite|postgres
	DBPath      string // SQLite path
	DatabaseURL string // Postgres DSN
	AutoMigrate bool   // DB_AUTO_MIGRATE
	SeedDemo    bool   // DB_SEED_DEMO

	// Chat pipeline and model
	Chat   ChatConfig
	OpenAI OpenAIConfig

	// Edge rate limiting (dashboard and event endpoints)
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "3000"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getdur("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		// Storage
		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		DBPath:      getenv("DB_PATH", "hotel.db"),
		DatabaseURL: getenv("DATABASE_URL", ""),
		AutoMigrate: getbool("DB_AUTO_MIGRATE", true),
		SeedDemo:    getbool("DB_SEED_DEMO", false),

		// Chat pipeline
		Chat: ChatConfig{
			RatePerWindow:   getint("RATE_LIMIT_PER_MINUTE", 12),
			RateWindow:      getdur("RATE_WINDOW", time.Minute),
			MaxMessageChars: getint("MAX_MESSAGE_CHARS", 600),
			BasicDailyCap:   getint("BASIC_DAILY_AI_CALL_LIMIT", 10),
			ProDailyCap:     getint("PRO_DAILY_AI_CALL_LIMIT", 100),
			FAQRulesPath:    getenv("FAQ_RULES_PATH", ""),
			TenantsPath:     getenv("TENANTS_PATH", ""),
			CounterBackend:  strings.ToLower(getenv("COUNTER_BACKEND", CounterMemory)),
			RedisURL:        getenv("REDIS_URL", "redis://localhost:6379/0"),
		},

		// Model
		OpenAI: OpenAIConfig{
			APIKey:          strings.TrimSpace(getenv("OPENAI_API_KEY", "")),
			Model:           getenv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:         strings.TrimRight(getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
			MaxOutputTokens: getint("OPENAI_MAX_OUTPUT_TOKENS", 220),
			Temperature:     getfloat("OPENAI_TEMPERATURE", 0.2),
			Timeout:         getdur("OPENAI_TIMEOUT", 20*time.Second),
		},

		// Edge rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 20),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "hotel-concierge"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DBDriver == "postgresql" || cfg.DBDriver == "pg" {
		cfg.DBDriver = DriverPostgres
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(cfg.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if cfg.Chat.RatePerWindow < 1 {
		return cfg, errors.New("RATE_LIMIT_PER_MINUTE must be >= 1")
	}
	if cfg.Chat.RateWindow <= 0 {
		return cfg, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.Chat.MaxMessageChars < 1 {
		return cfg, errors.New("MAX_MESSAGE_CHARS must be >= 1")
	}
	if cfg.Chat.BasicDailyCap < 0 || cfg.Chat.ProDailyCap < 0 {
		return cfg, errors.New("daily AI call limits must be >= 0")
	}
	switch cfg.Chat.CounterBackend {
	case CounterMemory:
	case CounterRedis:
		if strings.TrimSpace(cfg.Chat.RedisURL) == "" {
			return cfg, errors.New("REDIS_URL is required when COUNTER_BACKEND=redis")
		}
	default:
		return cfg, errors.New("COUNTER_BACKEND must be one of: memory, redis")
	}
	if cfg.OpenAI.MaxOutputTokens < 1 {
		return cfg, errors.New("OPENAI_MAX_OUTPUT_TOKENS must be >= 1")
	}
	if cfg.OpenAI.Temperature < 0 || cfg.OpenAI.Temperature > 2 {
		return cfg, errors.New("OPENAI_TEMPERATURE must be in [0,2]")
	}
	if cfg.OpenAI.Timeout <= 0 {
		return cfg, errors.New("OPENAI_TIMEOUT must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// HasModel reports whether a language-model credential is configured.
func (c OpenAIConfig) HasModel() bool { return c.APIKey != "" }

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
