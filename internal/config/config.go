package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName            string        `mapstructure:"app_name"`
	Env                string        `mapstructure:"app_env"`
	LogLevel           string        `mapstructure:"log_level"`
	RequestsFile       string        `mapstructure:"requests_file"`
	UserAgent          string        `mapstructure:"user_agent"`
	FailOnErrorStatus  bool          `mapstructure:"fail_on_error_status"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "typed-request")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("requests_file", "./configs/requests.yaml")
	v.SetDefault("user_agent", "TypedRequest/1.0")
	v.SetDefault("fail_on_error_status", false)
	v.SetDefault("http_timeout_seconds", 0) // transport default

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.RequestsFile = strings.TrimSpace(cfg.RequestsFile)
	if cfg.RequestsFile == "" {
		return nil, fmt.Errorf("requests_file must not be empty")
	}
	if cfg.HTTPTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	return &cfg, nil
}
