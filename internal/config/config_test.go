package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.Port == "" {
		t.Fatalf("unexpected empty config from MustLoad")
	}
}

// --- Load defaults ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "3000" || cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Fatalf("server defaults unexpected: %+v", cfg)
	}
	if cfg.DBDriver != DriverSQLite || cfg.DBPath != "hotel.db" || !cfg.AutoMigrate {
		t.Fatalf("storage defaults unexpected: %+v", cfg)
	}
	ch := cfg.Chat
	if ch.RatePerWindow != 12 || ch.RateWindow != time.Minute || ch.MaxMessageChars != 600 {
		t.Fatalf("chat limits unexpected: %+v", ch)
	}
	if ch.BasicDailyCap != 10 || ch.ProDailyCap != 100 || ch.CounterBackend != CounterMemory {
		t.Fatalf("quota defaults unexpected: %+v", ch)
	}
	oa := cfg.OpenAI
	if oa.Model != "gpt-4o-mini" || oa.MaxOutputTokens != 220 || oa.Temperature != 0.2 {
		t.Fatalf("openai defaults unexpected: %+v", oa)
	}
	if oa.HasModel() {
		t.Fatalf("no OPENAI_API_KEY set, HasModel should be false")
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_Overrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")

	t.Setenv("DB_DRIVER", "PostgreSQL")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/hotel")

	t.Setenv("RATE_LIMIT_PER_MINUTE", "3")
	t.Setenv("RATE_WINDOW", "30s")
	t.Setenv("MAX_MESSAGE_CHARS", "100")
	t.Setenv("BASIC_DAILY_AI_CALL_LIMIT", "2")
	t.Setenv("PRO_DAILY_AI_CALL_LIMIT", "x") // bad parse -> default 100
	t.Setenv("COUNTER_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	t.Setenv("OPENAI_API_KEY", "  sk-test  ")
	t.Setenv("OPENAI_BASE_URL", "http://llm.local/v1/")
	t.Setenv("OPENAI_TEMPERATURE", "0.7")

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")
	t.Setenv("IDEMPOTENCY_TTL", "48h")

	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}
	if cfg.DBDriver != DriverPostgres || cfg.DatabaseURL != "postgres://u:p@db:5432/hotel" {
		t.Fatalf("storage unexpected: %+v", cfg)
	}
	ch := cfg.Chat
	if ch.RatePerWindow != 3 || ch.RateWindow != 30*time.Second || ch.MaxMessageChars != 100 {
		t.Fatalf("chat limits unexpected: %+v", ch)
	}
	if ch.BasicDailyCap != 2 || ch.ProDailyCap != 100 {
		t.Fatalf("quota caps unexpected: %+v", ch)
	}
	if ch.CounterBackend != CounterRedis || ch.RedisURL != "redis://cache:6379/1" {
		t.Fatalf("counter backend unexpected: %+v", ch)
	}
	if !cfg.OpenAI.HasModel() || cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.BaseURL != "http://llm.local/v1" || cfg.OpenAI.Temperature != 0.7 {
		t.Fatalf("openai unexpected: %+v", cfg.OpenAI)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}
	if cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("idempotency ttl unexpected: %v", cfg.IdempotencyTTL)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"invalid LOG_LEVEL", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"empty PORT", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"non-positive timeouts", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"max header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"empty DB_PATH", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres"}, "DATABASE_URL"},
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}, "DB_DRIVER"},
		{"rate per window", map[string]string{"RATE_LIMIT_PER_MINUTE": "0"}, "RATE_LIMIT_PER_MINUTE"},
		{"rate window", map[string]string{"RATE_WINDOW": "-1s"}, "RATE_WINDOW"},
		{"max message chars", map[string]string{"MAX_MESSAGE_CHARS": "0"}, "MAX_MESSAGE_CHARS"},
		{"negative cap", map[string]string{"BASIC_DAILY_AI_CALL_LIMIT": "-1"}, "daily AI call limits"},
		{"unknown counter backend", map[string]string{"COUNTER_BACKEND": "memcached"}, "COUNTER_BACKEND"},
		{"output tokens", map[string]string{"OPENAI_MAX_OUTPUT_TOKENS": "0"}, "OPENAI_MAX_OUTPUT_TOKENS"},
		{"temperature", map[string]string{"OPENAI_TEMPERATURE": "3"}, "OPENAI_TEMPERATURE"},
		{"openai timeout", map[string]string{"OPENAI_TIMEOUT": "0s"}, "OPENAI_TIMEOUT"},
		{"rate rps negative", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"rate burst < 1", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"hsts max age negative", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"idempotency ttl", map[string]string{"IDEMPOTENCY_TTL": "0s"}, "IDEMPOTENCY_TTL"},
		{"otel sample ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil || !containsErr(err, tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

// --- helpers ---

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}

	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}

	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		t.Setenv("B_T", v)
		if !getbool("B_T", false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for _, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		t.Setenv("B_F", v)
		if getbool("B_F", true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool default behavior unexpected")
	}
}

func TestHelpers_splitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	want := []string{"a", "b", "c"}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, want) {
		t.Fatalf("splitCSV mismatch: got %#v want %#v", got, want)
	}
}

// Ensure tests don't pick up developer env.
func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "OPENAI_API_KEY", "DB_DRIVER", "DATABASE_URL", "COUNTER_BACKEND", "LOG_LEVEL"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
