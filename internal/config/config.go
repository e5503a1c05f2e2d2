package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Mail providers
const (
	MailProviderSMTP = "smtp"
	MailProviderSES  = "ses"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Dispatch  DispatchConfig
	Mail      MailConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is optional; an empty URL disables Redis
type RedisConfig struct {
	URL string
}

type SchedulerConfig struct {
	Cron     string
	Timezone string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type DispatchConfig struct {
	Workers     int
	SendTimeout time.Duration
	ClaimTTL    time.Duration
}

type MailConfig struct {
	Provider    string
	AWSRegion   string
	ImplicitTLS bool
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SCHEDULER_CRON", "0 0 8 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "Africa/Kigali")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DISPATCH_WORKERS", 4)
	v.SetDefault("DISPATCH_SEND_TIMEOUT", "30s")
	v.SetDefault("DISPATCH_CLAIM_TTL", "24h")
	v.SetDefault("MAIL_PROVIDER", MailProviderSMTP)
	v.SetDefault("AWS_REGION", "")
	v.SetDefault("SMTP_IMPLICIT_TLS", true)

	// Read from environment variables
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Scheduler: SchedulerConfig{
			Cron:     v.GetString("SCHEDULER_CRON"),
			Timezone: v.GetString("SCHEDULER_TIMEZONE"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Dispatch: DispatchConfig{
			Workers:     v.GetInt("DISPATCH_WORKERS"),
			SendTimeout: v.GetDuration("DISPATCH_SEND_TIMEOUT"),
			ClaimTTL:    v.GetDuration("DISPATCH_CLAIM_TTL"),
		},
		Mail: MailConfig{
			Provider:    v.GetString("MAIL_PROVIDER"),
			AWSRegion:   v.GetString("AWS_REGION"),
			ImplicitTLS: v.GetBool("SMTP_IMPLICIT_TLS"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Dispatch.Workers <= 0 {
		return fmt.Errorf("DISPATCH_WORKERS must be greater than 0")
	}

	if c.Dispatch.SendTimeout <= 0 {
		return fmt.Errorf("DISPATCH_SEND_TIMEOUT must be a positive duration")
	}

	if c.Dispatch.ClaimTTL <= 0 {
		return fmt.Errorf("DISPATCH_CLAIM_TTL must be a positive duration")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Scheduler.Cron); err != nil {
		return fmt.Errorf("SCHEDULER_CRON must be a valid cron spec with seconds: %w", err)
	}

	switch c.Mail.Provider {
	case MailProviderSMTP:
	case MailProviderSES:
		if c.Mail.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION is required when MAIL_PROVIDER is ses")
		}
	default:
		return fmt.Errorf("MAIL_PROVIDER must be one of smtp, ses")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Location returns the zone that defines "today"
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RedisEnabled reports whether a Redis URL is configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != ""
}
