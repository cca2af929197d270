package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config carries everything the process needs, loaded once at startup and
// passed down explicitly.
type Config struct {
	Port               string `mapstructure:"PORT"`
	Env                string `mapstructure:"ENV"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	OpenAIAPIKey       string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel        string `mapstructure:"OPENAI_MODEL"`
	CORSOrigins        string `mapstructure:"CORS_ORIGINS"`
	NotifyChannel      string `mapstructure:"NOTIFY_CHANNEL"`
	RecentPatientLimit int    `mapstructure:"RECENT_PATIENTS_LIMIT"`
}

// Load reads configuration from the environment, with an optional .env file
// for local development.  DATABASE_URL is the only hard requirement.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("CORS_ORIGINS", "http://localhost:8080")
	v.SetDefault("NOTIFY_CHANNEL", "medicai_changes")
	v.SetDefault("RECENT_PATIENTS_LIMIT", 10)

	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "OPENAI_API_KEY", "OPENAI_MODEL",
		"CORS_ORIGINS", "NOTIFY_CHANNEL", "RECENT_PATIENTS_LIMIT",
	} {
		v.BindEnv(key)
	}

	// .env is optional; missing file is not an error.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// IsDev reports whether the process runs in development mode.
func (c *Config) IsDev() bool { return c.Env == "development" }
