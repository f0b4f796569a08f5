package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	AI         AIConfig         `yaml:"ai"`
	Server     ServerConfig     `yaml:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Watch      WatchConfig      `yaml:"watch"`
	Email      EmailConfig      `yaml:"email"`
}

type YouTubeConfig struct {
	APIKey      string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	MaxComments int    `yaml:"max_comments"`
	PageSize    int64  `yaml:"page_size"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

// WatchConfig controls the optional scheduled re-analysis of one video.
type WatchConfig struct {
	Video    string `yaml:"video"`
	Schedule string `yaml:"schedule"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	// The config file is optional; API keys alone (from the environment)
	// are enough for one-shot runs.
	data, err := os.ReadFile(configFile)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	if cfg.YouTube.APIKey == "" {
		cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Email.Username == "" {
		cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if cfg.Email.Password == "" {
		cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}

	if cfg.YouTube.MaxComments == 0 {
		cfg.YouTube.MaxComments = 2000
	}
	if cfg.YouTube.PageSize == 0 {
		cfg.YouTube.PageSize = 100
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.5-flash"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Monitoring.HealthPort == 0 {
		cfg.Monitoring.HealthPort = 8081
	}
	if cfg.Watch.Schedule == "" {
		cfg.Watch.Schedule = "0 0 * * * *" // Hourly
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks shape and ranges only. Missing API keys are deliberately
// not an error here: each client reports its own missing credential so the
// caller can tell them apart.
func (c *Config) validate() error {
	if c.YouTube.MaxComments < 1 {
		return fmt.Errorf("youtube.max_comments must be positive, got %d", c.YouTube.MaxComments)
	}
	if c.YouTube.PageSize < 1 || c.YouTube.PageSize > 100 {
		return fmt.Errorf("youtube.page_size must be between 1 and 100, got %d", c.YouTube.PageSize)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port, got %d", c.Server.Port)
	}
	if c.Monitoring.HealthPort < 1 || c.Monitoring.HealthPort > 65535 {
		return fmt.Errorf("monitoring.health_port must be a valid port, got %d", c.Monitoring.HealthPort)
	}
	return nil
}

// EmailConfigured reports whether the optional watch-mode email report can
// be sent.
func (c *Config) EmailConfigured() bool {
	return c.Email.SMTPServer != "" && c.Email.Username != "" && c.Email.Password != "" &&
		c.Email.FromEmail != "" && c.Email.ToEmail != ""
}
