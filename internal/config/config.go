package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"tracker"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"tracker"`
	DBName     string `env:"DB_NAME" envDefault:"project_tracker"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort string `env:"REDIS_PORT" envDefault:"6379"`

	SessionSecret string `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`
	// InviteSecret keys the HMAC used to derive invitation keys.
	InviteSecret string `env:"INVITE_SECRET" envDefault:"default-invite-secret-change-me"`

	// Deadline watcher settings.
	PollInterval      time.Duration `env:"POLL_INTERVAL" envDefault:"30m"`
	CandidateWindow   time.Duration `env:"CANDIDATE_WINDOW" envDefault:"24h"`
	SendTimeout       time.Duration `env:"SEND_TIMEOUT" envDefault:"10s"`
	DefaultThresholds []int         `env:"DEFAULT_THRESHOLDS" envDefault:"24,6,1"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"tracker@localhost"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
