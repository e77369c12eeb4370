package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Database   DatabaseConfig   `envPrefix:"DB_"`
	GitHub     GitHubConfig     `envPrefix:"GITHUB_"`
	Classifier ClassifierConfig `envPrefix:"CLASSIFIER_"`
	Digest     DigestConfig     `envPrefix:"DIGEST_"`
	Notify     NotifyConfig     `envPrefix:"NOTIFY_"`
	SMTP       SMTPConfig       `envPrefix:"SMTP_"`
	Telegram   TelegramConfig   `envPrefix:"TELEGRAM_"`
	Log        LogConfig        `envPrefix:"LOG_"`
	Seed       SeedConfig       `envPrefix:"SEED_"`
}

type ServerConfig struct {
	Addr            string        `env:"ADDR"             envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	PushTimeout     time.Duration `env:"PUSH_TIMEOUT"     envDefault:"45s"`
}

type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
	DSN    string `env:"DSN"    envDefault:"host=localhost user=postgres password=password dbname=digest port=5432 sslmode=disable TimeZone=UTC"`
}

type GitHubConfig struct {
	BaseURL        string        `env:"BASE_URL"       envDefault:"https://api.github.com"`
	Token          string        `env:"TOKEN"`
	WebhookSecret  string        `env:"WEBHOOK_SECRET"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

type ClassifierConfig struct {
	// Workers > 1 fetches commit details concurrently.
	Workers       int           `env:"WORKERS"        envDefault:"1"`
	RetryAttempts int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryBackoff  time.Duration `env:"RETRY_BACKOFF"  envDefault:"500ms"`
	SkipExisting  bool          `env:"SKIP_EXISTING"  envDefault:"false"`
}

type DigestConfig struct {
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIModel        string        `env:"OPENAI_MODEL"        envDefault:"gpt-4o-mini"`
	GenerateTimeout    time.Duration `env:"GENERATE_TIMEOUT"    envDefault:"30s"`
	StrictAnnouncement bool          `env:"STRICT_ANNOUNCEMENT" envDefault:"false"`
	SchedulerEnabled   bool          `env:"SCHEDULER_ENABLED"   envDefault:"false"`
}

type NotifyConfig struct {
	Concurrency     int           `env:"CONCURRENCY"      envDefault:"8"`
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"15s"`
	EmailRate       float64       `env:"EMAIL_RATE"       envDefault:"5"`
	SlackRate       float64       `env:"SLACK_RATE"       envDefault:"1"`
	TelegramRate    float64       `env:"TELEGRAM_RATE"    envDefault:"20"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"     envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"     envDefault:"digest@localhost"`
	Subject  string `env:"SUBJECT"  envDefault:"Repository update"`
}

type TelegramConfig struct {
	Token string `env:"TOKEN"`
}

type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// SeedConfig creates one project, and optionally a subscriber, on an empty database.
type SeedConfig struct {
	Repository      string `env:"REPOSITORY"`
	DigestType      string `env:"DIGEST_TYPE"       envDefault:"changelog"`
	DigestSchedule  string `env:"DIGEST_SCHEDULE"`
	SubscriberEmail string `env:"SUBSCRIBER_EMAIL"`
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	TelegramChatID  string `env:"TELEGRAM_CHAT_ID"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Classifier.Workers < 1 {
		return fmt.Errorf("classifier workers must be at least 1, got %d", c.Classifier.Workers)
	}

	if c.Classifier.RetryAttempts < 1 {
		return fmt.Errorf("classifier retry attempts must be at least 1, got %d", c.Classifier.RetryAttempts)
	}

	if c.Notify.Concurrency < 1 {
		return fmt.Errorf("notify concurrency must be at least 1, got %d", c.Notify.Concurrency)
	}

	return nil
}
