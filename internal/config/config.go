// Package config loads process-wide configuration once at startup. The
// resulting struct is passed by reference into the gateway and engine
// constructors; core packages never consult the environment themselves.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ankitni/charchat/internal/engine"
	"github.com/ankitni/charchat/internal/gateway"
)

// Config is the explicit configuration handed to the constructors.
type Config struct {
	APIKey        string
	BaseURL       string
	DataDir       string
	DefaultModel  string
	Temperature   float32
	MaxTokens     int
	ContextBudget int
	Observe       bool
	LogLevel      string
}

// Load reads ~/.config/charchat/config.yml (when present) and the
// environment. OPENROUTER_API_KEY supplies the key; CHARCHAT_* variables
// override the remaining settings.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("base-url", gateway.DefaultBaseURL)
	v.SetDefault("default-model", gateway.DefaultModel)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max-tokens", 1000)
	v.SetDefault("context-budget", engine.DefaultContextBudget)
	v.SetDefault("log-level", "warn")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "charchat"))
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("CHARCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api-key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("observe", "CHARCHAT_OBSERVE_JSON")

	// A missing config file is fine; env and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		APIKey:        v.GetString("api-key"),
		BaseURL:       v.GetString("base-url"),
		DataDir:       v.GetString("data-dir"),
		DefaultModel:  v.GetString("default-model"),
		Temperature:   float32(v.GetFloat64("temperature")),
		MaxTokens:     v.GetInt("max-tokens"),
		ContextBudget: v.GetInt("context-budget"),
		Observe:       v.GetBool("observe"),
		LogLevel:      v.GetString("log-level"),
	}, nil
}
