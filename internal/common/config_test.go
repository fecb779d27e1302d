package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("DB_DRIVER", "")

	cfg := LoadConfig()
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "en-US", cfg.Extraction.DefaultLocale)
	assert.Equal(t, "USD", cfg.Extraction.DefaultCurrency)
	assert.InDelta(t, 0.5, cfg.Extraction.MinConfidence, 1e-9)
	assert.True(t, cfg.LLM.Lenient)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_URL", "postgres://localhost/expenses")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("LLM_TIMEOUT", "3s")
	t.Setenv("LLM_LENIENT", "false")
	t.Setenv("DEFAULT_CURRENCY", "eur")
	t.Setenv("MIN_CONFIDENCE", "0.75")
	t.Setenv("PUBLISH_WORKERS", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.LLM.Lenient)
	assert.Equal(t, "EUR", cfg.Extraction.DefaultCurrency)
	assert.InDelta(t, 0.75, cfg.Extraction.MinConfidence, 1e-9)
	assert.Equal(t, 2, cfg.Events.Workers)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("DB_DRIVER", "sqlite")
	valid := LoadConfig

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DriverPostgres; c.Database.DSN = "" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"openai without key", func(c *Config) { c.LLM.Provider = ProviderOpenAI; c.LLM.OpenAIAPIKey = "" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "claude" }},
		{"bad currency", func(c *Config) { c.Extraction.DefaultCurrency = "EURO" }},
		{"bad confidence", func(c *Config) { c.Extraction.MinConfidence = 1.5 }},
		{"no workers", func(c *Config) { c.Events.Workers = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "CONFIG_ERROR", appErr.Code)
		})
	}
}
