package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Analysis specifics
	Dataset DatasetConfig
	Session SessionConfig
	Compute ComputeConfig

	// LLM Provider Abstraction
	LLM LLMConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// DatasetConfig bounds uploads and schema summaries.
type DatasetConfig struct {
	MaxBytes     int64
	SampleValues int
}

// SessionConfig bounds the session store and per-session traffic.
type SessionConfig struct {
	MaxSessions     int
	TTL             time.Duration
	RateLimitPerMin int
	PlanTimeout     time.Duration
	ExecTimeout     time.Duration
}

// ComputeConfig points at the computation backend.
type ComputeConfig struct {
	BaseURL     string
	ArtifactDir string
	Timeout     time.Duration
}

// LLMConfig holds configuration for the LLM provider abstraction layer
type LLMConfig struct {
	Providers       []ProviderConfig `yaml:"providers"`
	FallbackEnabled bool             `yaml:"fallback_enabled"`
	RetryAttempts   int              `yaml:"retry_attempts"`
	RetryDelay      time.Duration    `yaml:"retry_delay"`
	MaxTotalTimeout time.Duration    `yaml:"max_total_timeout"`
}

// ProviderConfig holds configuration for a single LLM provider
type ProviderConfig struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

// Load loads configuration using Viper.
// Config file name: config.yaml — searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// Dataset bounds
	cfg.Dataset.MaxBytes = viper.GetInt64("dataset.max_bytes")
	cfg.Dataset.SampleValues = viper.GetInt("dataset.sample_values")

	// Sessions
	cfg.Session.MaxSessions = viper.GetInt("session.max_sessions")
	cfg.Session.TTL = viper.GetDuration("session.ttl")
	cfg.Session.RateLimitPerMin = viper.GetInt("session.rate_limit_per_min")
	cfg.Session.PlanTimeout = viper.GetDuration("session.plan_timeout")
	cfg.Session.ExecTimeout = viper.GetDuration("session.exec_timeout")

	// Computation backend
	cfg.Compute.BaseURL = viper.GetString("compute.base_url")
	cfg.Compute.ArtifactDir = viper.GetString("compute.artifact_dir")
	cfg.Compute.Timeout = viper.GetDuration("compute.timeout")
	if computeURL := viper.GetString("compute_base_url"); computeURL != "" {
		cfg.Compute.BaseURL = computeURL
	}

	// LLM Provider Abstraction
	cfg.LLM.FallbackEnabled = viper.GetBool("llm.fallback_enabled")
	cfg.LLM.RetryAttempts = viper.GetInt("llm.retry_attempts")
	cfg.LLM.RetryDelay = viper.GetDuration("llm.retry_delay")
	cfg.LLM.MaxTotalTimeout = viper.GetDuration("llm.max_total_timeout")

	// Load provider configurations
	if viper.IsSet("llm.providers") {
		providersRaw := viper.Get("llm.providers")
		if providersList, ok := providersRaw.([]interface{}); ok {
			for _, p := range providersList {
				if providerMap, ok := p.(map[string]interface{}); ok {
					provider := ProviderConfig{
						Name:    getStringFromMap(providerMap, "name"),
						Enabled: getBoolFromMap(providerMap, "enabled"),
						APIKey:  expandEnvVar(getStringFromMap(providerMap, "api_key")),
						BaseURL: getStringFromMap(providerMap, "base_url"),
						Model:   getStringFromMap(providerMap, "model"),
					}
					cfg.LLM.Providers = append(cfg.LLM.Providers, provider)
				}
			}
		}
	}

	// A single provider can also come from plain env vars.
	if len(cfg.LLM.Providers) == 0 {
		if key := viper.GetString("gemini_api_key"); key != "" {
			cfg.LLM.Providers = append(cfg.LLM.Providers, ProviderConfig{
				Name:    "gemini",
				Enabled: true,
				APIKey:  key,
				Model:   viper.GetString("gemini_model"),
			})
		}
	}

	if len(cfg.LLM.Providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured - add llm.providers to config.yaml or set GEMINI_API_KEY")
	}

	if cfg.Compute.BaseURL == "" {
		return nil, fmt.Errorf("compute.base_url is required")
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("dataset.max_bytes", 10<<20)
	viper.SetDefault("dataset.sample_values", 3)

	viper.SetDefault("session.max_sessions", 1024)
	viper.SetDefault("session.ttl", "30m")
	viper.SetDefault("session.rate_limit_per_min", 60)
	viper.SetDefault("session.plan_timeout", "30s")
	viper.SetDefault("session.exec_timeout", "2m")

	viper.SetDefault("compute.artifact_dir", "artifacts")
	viper.SetDefault("compute.timeout", "60s")

	// LLM defaults
	viper.SetDefault("llm.fallback_enabled", true)
	viper.SetDefault("llm.retry_attempts", 2)
	viper.SetDefault("llm.retry_delay", "500ms")
	viper.SetDefault("llm.max_total_timeout", "60s")
}

// expandEnvVar expands environment variables in the format ${VAR_NAME}
func expandEnvVar(value string) string {
	if value == "" {
		return value
	}

	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		if envValue := viper.GetString(envVar); envValue != "" {
			return envValue
		}
		if envValue := viper.GetString(strings.ToLower(envVar)); envValue != "" {
			return envValue
		}
		if envValue := os.Getenv(envVar); envValue != "" {
			return envValue
		}
	}

	return value
}

func getStringFromMap(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getBoolFromMap(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
