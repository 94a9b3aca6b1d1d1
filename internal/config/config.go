// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the
// Telegram assistant, the web authorization server, the external language
// model and transcription APIs, and the shared SQLite database.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
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
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// LLMConfig holds settings for the chat-completion API.
type LLMConfig struct {
	BaseURL string // LLM_BASE_URL, should include the /v1 prefix
	APIKey  string // OPENROUTER_API_KEY
	Model   string // LLM_MODEL
	Timeout time.Duration
}

// STTConfig holds settings for the speech-to-text API and the local
// audio transcoder.
type STTConfig struct {
	BaseURL      string        // STT_BASE_URL
	APIKey       string        // ASSEMBLYAI_API_KEY
	Language     language.Tag  // STT_LANGUAGE (BCP-47 tag)
	PollInterval time.Duration // TRANSCRIPT_POLL_INTERVAL
	Timeout      time.Duration // TRANSCRIPT_TIMEOUT, bounds the poll loop
	FFmpegPath   string        // FFMPEG_PATH
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Bot
	TelegramToken string        // TELEGRAM_TOKEN
	AuthServerURL string        // AUTH_SERVER_URL, shown to unauthorized users
	AuthPassword  string        // AUTH_PASSWORD, shared web login password
	GrantWindow   time.Duration // GRANT_WINDOW, how long a grant stays valid

	// App
	DBPath string // SQLite path

	// Rate limiting
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// External APIs
	LLM LLMConfig
	STT STTConfig

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
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Bot
		TelegramToken: getenv("TELEGRAM_TOKEN", ""),
		AuthServerURL: getenv("AUTH_SERVER_URL", "http://localhost:8080"),
		AuthPassword:  getenv("AUTH_PASSWORD", ""),
		// 120 days; numerically equal to the 4×30d grant of the legacy bot flow.
		GrantWindow: getdur("GRANT_WINDOW", 120*24*time.Hour),

		// App
		DBPath: getenv("DB_PATH", "assistant.db"),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// External APIs
		LLM: LLMConfig{
			BaseURL: getenv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:  getenv("OPENROUTER_API_KEY", ""),
			Model:   getenv("LLM_MODEL", "mistralai/mistral-7b-instruct"),
			Timeout: getdur("LLM_TIMEOUT", 120*time.Second),
		},
		STT: STTConfig{
			BaseURL:      getenv("STT_BASE_URL", "https://api.assemblyai.com/v2"),
			APIKey:       getenv("ASSEMBLYAI_API_KEY", ""),
			PollInterval: getdur("TRANSCRIPT_POLL_INTERVAL", 2*time.Second),
			Timeout:      getdur("TRANSCRIPT_TIMEOUT", 2*time.Minute),
			FFmpegPath:   getenv("FFMPEG_PATH", "ffmpeg"),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "auth-server-tbot"),
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

	tag, err := language.Parse(getenv("STT_LANGUAGE", "ru"))
	if err != nil {
		return cfg, errors.New("STT_LANGUAGE must be a valid BCP-47 language tag")
	}
	cfg.STT.Language = tag

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
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.GrantWindow <= 0 {
		return cfg, errors.New("GRANT_WINDOW must be > 0")
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
	if cfg.LLM.Timeout <= 0 {
		return cfg, errors.New("LLM_TIMEOUT must be > 0")
	}
	if cfg.STT.PollInterval <= 0 {
		return cfg, errors.New("TRANSCRIPT_POLL_INTERVAL must be > 0")
	}
	if cfg.STT.Timeout < cfg.STT.PollInterval {
		return cfg, errors.New("TRANSCRIPT_TIMEOUT must be >= TRANSCRIPT_POLL_INTERVAL")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

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
