package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RichardoC/drivewise/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8100", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, config.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 800, cfg.LLM.MaxTokens)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.False(t, cfg.LLM.ModelEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_PROVIDER", "langchain")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1/")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("LLM_TIMEOUT", "5s")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, config.ProviderLangChain, cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434/v1/", cfg.LLM.BaseURL)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.LLM.ModelEnabled())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := `
server:
  addr: ":7000"
llm:
  provider: langchain
  model: llama3.1:8b
storage:
  driver: redis
  redis:
    addr: "redis:6379"
    prefix: test
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "llama3.1:8b", cfg.LLM.Model)
	assert.Equal(t, config.DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, "test", cfg.Storage.Redis.Prefix)
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		LLM:     config.LLM{Provider: config.ProviderOpenAI, Timeout: time.Second},
		Storage: config.Storage{Driver: config.DriverMemory},
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{"valid", func(c *config.Config) {}, false},
		{"unknown provider", func(c *config.Config) { c.LLM.Provider = "gemini" }, true},
		{"unknown driver", func(c *config.Config) { c.Storage.Driver = "postgres" }, true},
		{"zero timeout", func(c *config.Config) { c.LLM.Timeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
