// Package config loads process settings from the environment and an optional
// config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"trip-quote-agent/internal/quote"
)

const (
	BackendDynamo = "dynamodb"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	StoreBackend string        `mapstructure:"STORE_BACKEND"`
	StateTable   string        `mapstructure:"STATE_TABLE"`
	RedisAddr    string        `mapstructure:"REDIS_ADDR"`
	RedisPrefix  string        `mapstructure:"REDIS_PREFIX"`
	SessionTTL   time.Duration `mapstructure:"SESSION_TTL"`

	// Secrets and the agent model live under ParamPrefix in Parameter Store.
	ParamPrefix   string `mapstructure:"PARAM_PREFIX"`
	AgentProvider string `mapstructure:"AGENT_PROVIDER"`

	QuoteBaseURL       string `mapstructure:"QUOTE_BASE_URL"`
	Timezone           string `mapstructure:"TIMEZONE"`
	MaxMessageLength   int    `mapstructure:"MAX_MESSAGE_LENGTH"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	EvolutionBaseURL  string `mapstructure:"EVOLUTION_BASE_URL"`
	EvolutionInstance string `mapstructure:"EVOLUTION_INSTANCE"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	DevAddr  string `mapstructure:"DEV_ADDR"`
}

var defaults = map[string]any{
	"STORE_BACKEND":         BackendDynamo,
	"STATE_TABLE":           "",
	"REDIS_ADDR":            "localhost:6379",
	"REDIS_PREFIX":          "tripquote:",
	"SESSION_TTL":           "24h",
	"PARAM_PREFIX":          "/trip-quote-agent",
	"AGENT_PROVIDER":        ProviderNone,
	"QUOTE_BASE_URL":        quote.DefaultBaseURL,
	"TIMEZONE":              "America/Sao_Paulo",
	"MAX_MESSAGE_LENGTH":    1000,
	"RATE_LIMIT_PER_MINUTE": 20,
	"EVOLUTION_BASE_URL":    "",
	"EVOLUTION_INSTANCE":    "",
	"LOG_LEVEL":             "info",
	"DEV_ADDR":              ":8080",
}

// Load reads configFile when given, otherwise config.yaml from the working
// directory or ./config if present. Environment variables win over both.
func Load(configFile string) (Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.AgentProvider = strings.ToLower(strings.TrimSpace(cfg.AgentProvider))
	cfg.ParamPrefix = strings.TrimRight(strings.TrimSpace(cfg.ParamPrefix), "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendDynamo:
		if strings.TrimSpace(c.StateTable) == "" {
			return errors.New("config: STATE_TABLE is required for the dynamodb backend")
		}
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return errors.New("config: REDIS_ADDR is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.AgentProvider {
	case ProviderNone, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("config: unknown AGENT_PROVIDER %q", c.AgentProvider)
	}
	if (c.EvolutionBaseURL == "") != (c.EvolutionInstance == "") {
		return errors.New("config: EVOLUTION_BASE_URL and EVOLUTION_INSTANCE must be set together")
	}
	if (c.AgentProvider != ProviderNone || c.EvolutionEnabled()) && strings.TrimSpace(c.ParamPrefix) == "" {
		return errors.New("config: PARAM_PREFIX is required when an agent provider or Evolution is set")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Today" for date extraction is read in it.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EvolutionEnabled reports whether webhook replies are pushed back to WhatsApp.
func (c Config) EvolutionEnabled() bool {
	return c.EvolutionBaseURL != "" && c.EvolutionInstance != ""
}
