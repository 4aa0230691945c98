package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI    = "openai"
	ProviderLangChain = "langchain"

	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Server struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:":8100"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

type LLM struct {
	// Provider selects the client used for questions without a canned answer.
	Provider    string        `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	APIKey      string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL     string        `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Model       string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o"`
	Temperature float32       `yaml:"temperature" env:"MODEL_TEMPERATURE" env-default:"0.7"`
	MaxTokens   int           `yaml:"max_tokens" env:"MODEL_MAX_TOKENS" env-default:"800"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"30s"`
	Breaker     Breaker       `yaml:"breaker"`
}

type Breaker struct {
	MaxRequests      uint32        `yaml:"max_requests" env:"LLM_BREAKER_MAX_REQUESTS" env-default:"1"`
	Interval         time.Duration `yaml:"interval" env:"LLM_BREAKER_INTERVAL" env-default:"60s"`
	OpenTimeout      time.Duration `yaml:"open_timeout" env:"LLM_BREAKER_OPEN_TIMEOUT" env-default:"30s"`
	FailureThreshold float64       `yaml:"failure_threshold" env:"LLM_BREAKER_FAILURE_THRESHOLD" env-default:"0.6"`
	MinRequests      uint32        `yaml:"min_requests" env:"LLM_BREAKER_MIN_REQUESTS" env-default:"5"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"drivewise.db"`
	Redis      Redis  `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"drivewise"`
}

type Log struct {
	Level       string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT" env-default:"false"`
}

type Config struct {
	Server  Server  `yaml:"server"`
	LLM     LLM     `yaml:"llm"`
	Storage Storage `yaml:"storage"`
	Log     Log     `yaml:"log"`
}

// Load reads cfgPath (when non-empty) and then the environment, which wins.
// A .env file in the working directory is loaded first if one exists.
func Load(cfgPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if cfgPath != "" {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PathFromEnv returns CONFIG_PATH, which the binaries use when no -config flag is given.
func PathFromEnv() string {
	return os.Getenv("CONFIG_PATH")
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderLangChain:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm timeout must be positive")
	}
	return nil
}

// ModelEnabled reports whether questions without a canned answer may be sent to a model.
func (l LLM) ModelEnabled() bool {
	return l.APIKey != ""
}
