package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"regauth/internal/utils"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port int `yaml:"port" env:"SERVER_PORT"`
}

type AppConfig struct {
	Env string `yaml:"env" env:"APP_ENV"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DATABASE_DRIVER"`
	DSN    string `yaml:"url" env:"DATABASE_URL"`
}

type CacheConfig struct {
	// memory or sql
	Driver string `yaml:"driver" env:"CACHE_DRIVER"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	TokenTTL        time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"`
	VerificationTTL time.Duration `yaml:"verification_ttl" env:"AUTH_VERIFICATION_TTL"`
	BcryptCost      int           `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"EMAIL_SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"EMAIL_SMTP_PORT"`
	SMTPUser     string `yaml:"smtp_user" env:"EMAIL_SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"EMAIL_SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"EMAIL_FROM"`
	DryRun       bool   `yaml:"dry_run" env:"EMAIL_DRY_RUN"`
}

type MobizonConfig struct {
	Enabled  bool   `yaml:"enabled" env:"MOBIZON_ENABLED"`
	APIKey   string `yaml:"api_key" env:"MOBIZON_API_KEY"`
	SenderID string `yaml:"sender_id" env:"MOBIZON_SENDER_ID"`
	DryRun   bool   `yaml:"dry_run" env:"MOBIZON_DRY_RUN"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"RATELIMIT_RPS"`
	Burst int     `yaml:"burst" env:"RATELIMIT_BURST"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Email     EmailConfig     `yaml:"email"`
	Mobizon   MobizonConfig   `yaml:"mobizon"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. A missing file is not an error; the
// environment alone can configure the service.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 4000
	}
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "file:regauth.db"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.VerificationTTL == 0 {
		c.Auth.VerificationTTL = 10 * time.Minute
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Auth.JWTSecret == "" && c.IsDevelopment() {
		// per-process secret; tokens do not survive a restart
		if secret, err := utils.NewRandomToken(32); err == nil {
			c.Auth.JWTSecret = secret
		}
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromEmail == "" {
		c.Email.FromEmail = "no-reply@localhost"
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 5
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, "development")
}

func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required outside development"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.VerificationTTL <= 0 {
		errs = append(errs, errors.New("auth.verification_ttl must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost %d out of range 4..31", c.Auth.BcryptCost))
	}
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be postgres or sqlite", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	switch strings.ToLower(c.Cache.Driver) {
	case "memory", "sql":
	default:
		errs = append(errs, fmt.Errorf("cache.driver %q must be memory or sql", c.Cache.Driver))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if !c.Email.DryRun && c.Email.SMTPHost == "" {
		errs = append(errs, errors.New("email.smtp_host is required unless email.dry_run is set"))
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("ratelimit values must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
