package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	Events     EventsConfig
	Cache      CacheConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // sqlite | postgres
	DSN              string
	SQLitePath       string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string
	MetricsAddr string
}

// LLMConfig holds language model configuration
type LLMConfig struct {
	Provider          string // openai | gemini | none
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	Temperature       float32
	GeminiAPIKey      string
	GeminiModel       string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
	Lenient           bool
}

// ExtractionConfig holds defaults for the conversation orchestrator
type ExtractionConfig struct {
	DefaultLocale   string
	DefaultCurrency string
	MinConfidence   float64
}

// EventsConfig holds AMQP publishing configuration
type EventsConfig struct {
	AMQPURL   string
	Exchange  string
	Queue     string
	Workers   int
	QueueSize int
}

// CacheConfig holds participant cache and session store configuration
type CacheConfig struct {
	Size       int
	TTL        time.Duration
	SessionTTL time.Duration
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", "./data/expenses.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:    getEnv("GRPC_ADDR", ":8080"),
			MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		},
		LLM: LLMConfig{
			Provider:          strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature:       getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", 15*time.Second),
			RequestsPerMinute: getEnvAsInt("LLM_REQUESTS_PER_MINUTE", 60),
			Burst:             getEnvAsInt("LLM_BURST", 5),
			Lenient:           getEnvAsBool("LLM_LENIENT", true),
		},
		Extraction: ExtractionConfig{
			DefaultLocale:   getEnv("DEFAULT_LOCALE", "en-US"),
			DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
			MinConfidence:   getEnvAsFloat64("MIN_CONFIDENCE", 0.5),
		},
		Events: EventsConfig{
			AMQPURL:   getEnv("AMQP_URL", ""),
			Exchange:  getEnv("AMQP_EXCHANGE", "expenses"),
			Queue:     getEnv("AMQP_QUEUE", "expenses.confirmed"),
			Workers:   getEnvAsInt("PUBLISH_WORKERS", 2),
			QueueSize: getEnvAsInt("PUBLISH_QUEUE_SIZE", 100),
		},
		Cache: CacheConfig{
			Size:       getEnvAsInt("CACHE_SIZE", 1000),
			TTL:        getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			SessionTTL: getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for the postgres driver", ErrInvalidInput)
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return NewAppError("CONFIG_ERROR", "SQLITE_PATH is required for the sqlite driver", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported DB_DRIVER %q", c.Database.Driver), ErrInvalidInput)
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required for the openai provider", ErrInvalidInput)
		}
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required for the gemini provider", ErrInvalidInput)
		}
	case ProviderNone:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported LLM_PROVIDER %q", c.LLM.Provider), ErrInvalidInput)
	}

	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Extraction.MinConfidence <= 0 || c.Extraction.MinConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "MIN_CONFIDENCE must be in (0, 1]", ErrInvalidInput)
	}
	if v := NewValidator().
		Field("DEFAULT_CURRENCY", c.Extraction.DefaultCurrency, CurrencyCode).
		Field("DEFAULT_LOCALE", c.Extraction.DefaultLocale, LocaleTag); v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	if c.Events.Workers <= 0 || c.Events.QueueSize <= 0 {
		return NewAppError("CONFIG_ERROR", "PUBLISH_WORKERS and PUBLISH_QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}
