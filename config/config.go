package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration of the service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Session   SessionConfig   `mapstructure:"session"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// AzureConfig identifies one Azure OpenAI deployment. Empty values are
// tolerated at load time; generation calls report them as a missing
// configuration so question mode keeps working without credentials.
type AzureConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	APIVersion string `mapstructure:"api_version"`
	Deployment string `mapstructure:"deployment"`
}

// LLMConfig tunes model access and the generation loop.
type LLMConfig struct {
	Azure              AzureConfig   `mapstructure:"azure"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MaxRetries         int           `mapstructure:"max_retries"`
	MaxTokens          int           `mapstructure:"max_tokens"`
	Temperature        float64       `mapstructure:"temperature"`
	SummaryMaxTokens   int           `mapstructure:"summary_max_tokens"`
	SummaryTemperature float64       `mapstructure:"summary_temperature"`
}

func (l LLMConfig) Validate() error {
	if l.MaxRetries < 1 {
		return fmt.Errorf("llm.max_retries must be at least 1")
	}
	if l.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	return nil
}

// RetrievalConfig controls the reference-document index.
type RetrievalConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DocsDir      string `mapstructure:"docs_dir"`
	TopK         int    `mapstructure:"top_k"`
	SnippetLimit int    `mapstructure:"snippet_limit"`
}

func (r RetrievalConfig) Validate() error {
	if r.Enabled && strings.TrimSpace(r.DocsDir) == "" {
		return fmt.Errorf("retrieval.docs_dir required when retrieval is enabled")
	}
	return nil
}

// SessionConfig controls in-memory session lifecycle.
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// TelemetryConfig toggles the Prometheus collectors.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads config from file and TLIP_* environment variables.
// A missing config file is fine (env-only deployments); anything else
// fatal at load time panics, the only place startup-fatal handling belongs.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("llm.timeout", "60s")
	viper.SetDefault("llm.max_retries", 2)
	viper.SetDefault("llm.max_tokens", 1000)
	viper.SetDefault("llm.temperature", 0.5)
	viper.SetDefault("llm.summary_max_tokens", 500)
	viper.SetDefault("llm.summary_temperature", 0.0)
	viper.SetDefault("llm.azure.api_version", "2024-02-01")
	// Empty defaults register the credential keys so AutomaticEnv feeds
	// them into Unmarshal in env-only deployments.
	viper.SetDefault("llm.azure.endpoint", "")
	viper.SetDefault("llm.azure.api_key", "")
	viper.SetDefault("llm.azure.deployment", "")
	viper.SetDefault("retrieval.enabled", false)
	viper.SetDefault("retrieval.top_k", 4)
	viper.SetDefault("retrieval.snippet_limit", 300)
	viper.SetDefault("session.ttl", "30m")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("TLIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.LLM.Validate(); err != nil {
		panic(err)
	}
	if err := config.Retrieval.Validate(); err != nil {
		panic(err)
	}
	return &config
}
