// Package config loads frank's settings from defaults, an optional YAML
// file, a .env file and FRANK_* environment variables, in rising priority.
// Command-line flags bound through viper override all of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/valpere/frank/internal/chat"
	"github.com/valpere/frank/internal/refine"
)

const EnvPrefix = "FRANK"

type Config struct {
	Provider string        `mapstructure:"provider"`
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Model    string        `mapstructure:"model"`
	// Steps is kept as text: a malformed value falls back to the default
	// iteration count instead of failing the load.
	Steps  string       `mapstructure:"steps"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	GinMode         string        `mapstructure:"gin_mode"`
}

// SetDefaults registers every key, which also lets AutomaticEnv pick up the
// matching FRANK_* variables during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", chat.ProviderOllama)
	v.SetDefault("base_url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("timeout", chat.DefaultTimeout)
	v.SetDefault("model", refine.DefaultModel)
	v.SetDefault("steps", fmt.Sprint(refine.DefaultIterations))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	// Applies to JSON responses. SSE streams clear their write deadline.
	v.SetDefault("server.write_timeout", 15*time.Minute)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.gin_mode", "release")
}

// Load reads configuration into a Config. cfgFile may be empty, in which case
// .frank.{yaml,json,toml} is looked up in the working and home directories and
// its absence is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".frank")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case chat.ProviderOllama, chat.ProviderOpenRouter, chat.ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q (want ollama, openrouter or openai)", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	// gin.SetMode panics on anything else.
	switch c.Server.GinMode {
	case "", gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("unknown gin mode %q (want debug, release or test)", c.Server.GinMode)
	}
	return nil
}

// Chat returns the backend settings.
func (c *Config) Chat() chat.Config {
	return chat.Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		APIKey:   c.APIKey,
		Timeout:  c.Timeout,
	}
}

// Iterations is the parsed Steps value.
func (c *Config) Iterations() int {
	return refine.ParseIterations(c.Steps)
}
