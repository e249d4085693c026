package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Model     string                    `yaml:"model" mapstructure:"model"`
	Memory    MemoryConfig              `yaml:"memory" mapstructure:"memory"`
	Shell     ShellConfig               `yaml:"shell" mapstructure:"shell"`
	History   HistoryConfig             `yaml:"history" mapstructure:"history"`
	Providers map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
	Debug     bool                      `yaml:"debug" mapstructure:"debug"`
}

type MemoryConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	File         string `yaml:"file" mapstructure:"file"`
	ContextTurns int    `yaml:"context_turns" mapstructure:"context_turns"`
}

type ShellConfig struct {
	// Timeout in seconds.
	Timeout int `yaml:"timeout" mapstructure:"timeout"`
}

type HistoryConfig struct {
	File    string `yaml:"file" mapstructure:"file"`
	MaxSize int    `yaml:"max_size" mapstructure:"max_size"`
}

type ProviderConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// Environment variables consulted when a provider has no api_key configured.
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Model: "gemini-2.5-flash",
		Memory: MemoryConfig{
			Enabled:      true,
			File:         "polo_memory.json",
			ContextTurns: 3,
		},
		Shell: ShellConfig{Timeout: 30},
		History: HistoryConfig{
			File:    filepath.Join(home, ".polo_history"),
			MaxSize: 1000,
		},
		Providers: map[string]ProviderConfig{
			"openai":    {BaseURL: "https://api.openai.com/v1"},
			"anthropic": {},
			"google":    {},
		},
	}
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads config.yaml from the usual search paths (or explicitPath when
// set), applies POLO_* environment overrides and validates the result.
func Load(explicitPath string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "polo"))
		}
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "polo"))
	}

	// AutomaticEnv only resolves keys viper already knows about.
	v.SetDefault("model", cfg.Model)
	v.SetDefault("debug", cfg.Debug)
	v.SetDefault("memory.enabled", cfg.Memory.Enabled)
	v.SetDefault("memory.file", cfg.Memory.File)
	v.SetDefault("memory.context_turns", cfg.Memory.ContextTurns)
	v.SetDefault("shell.timeout", cfg.Shell.Timeout)
	v.SetDefault("history.file", cfg.History.File)
	v.SetDefault("history.max_size", cfg.History.MaxSize)

	v.SetEnvPrefix("POLO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	for name, p := range cfg.Providers {
		p.APIKey = expandEnv(p.APIKey)
		p.BaseURL = expandEnv(p.BaseURL)
		if p.APIKey == "" {
			p.APIKey = os.Getenv(apiKeyEnv[name])
		}
		if name == "openai" && p.BaseURL == "" {
			p.BaseURL = "https://api.openai.com/v1"
		}
		cfg.Providers[name] = p
	}
	for name, env := range apiKeyEnv {
		if _, ok := cfg.Providers[name]; !ok {
			cfg.Providers[name] = ProviderConfig{APIKey: os.Getenv(env)}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) ProviderFor(name string) (ProviderConfig, bool) {
	p, ok := c.Providers[name]
	return p, ok
}

// Validate checks the configuration for errors and fills zero values that
// have a sensible default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("config: model is required")
	}
	if c.Memory.Enabled && c.Memory.File == "" {
		return fmt.Errorf("config: memory.file is required when memory is enabled")
	}
	for name := range c.Providers {
		if _, ok := apiKeyEnv[name]; !ok {
			return fmt.Errorf("config: unknown provider %q (must be openai, anthropic, or google)", name)
		}
	}
	if c.Shell.Timeout < 1 {
		c.Shell.Timeout = 30
	}
	if c.Memory.ContextTurns < 0 {
		c.Memory.ContextTurns = 3
	}
	if c.History.MaxSize < 1 {
		c.History.MaxSize = 1000
	}
	return nil
}
