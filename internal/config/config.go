// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"client_manager_backend/pkg/utils"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// DevJWTSecret is substituted outside production when JWT_SECRET is unset.
const DevJWTSecret = "dev-only-insecure-jwt-secret"

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	Migrate      bool
}

// DSN renders a lib/pq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Config is the full runtime configuration of the server.
type Config struct {
	AppEnv   string
	Port     string
	Database DatabaseConfig

	JWTSecret     string
	JWTExpiration time.Duration

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	// ViewTouchesUpdatedAt makes the access-count increment also bump updated_at.
	ViewTouchesUpdatedAt bool

	SeedDatabase  bool
	AdminEmail    string
	AdminPassword string
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Load reads ENV_FILE (default .env) if present, then the environment.
func Load() (*Config, error) {
	envFile := utils.Getenv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv: strings.ToLower(utils.Getenv("APP_ENV", EnvDevelopment)),
		Port:   utils.Getenv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:     utils.Getenv("DB_HOST", "localhost"),
			Port:     utils.Getenv("DB_PORT", "5432"),
			User:     utils.Getenv("DB_USER", "clients_user"),
			Password: utils.Getenv("DB_PASSWORD", "clients_password"),
			Name:     utils.Getenv("DB_NAME", "clients_db"),
			SSLMode:  utils.Getenv("DB_SSLMODE", "disable"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS",
			[]string{"http://localhost:5173", "http://localhost"}),
		LogLevel:      utils.Getenv("LOG_LEVEL", "info"),
		LogFormat:     utils.Getenv("LOG_FORMAT", "console"),
		AdminEmail:    utils.NormalizeEmail(utils.Getenv("ADMIN_EMAIL", "admin@example.com")),
		AdminPassword: utils.Getenv("ADMIN_PASSWORD", "admin123"),
	}

	var errs []error
	var err error
	if cfg.Database.MaxOpenConns, err = utils.GetenvInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		errs = append(errs, err)
	}
	if cfg.Database.MaxIdleConns, err = utils.GetenvInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		errs = append(errs, err)
	}
	if cfg.Database.Migrate, err = utils.GetenvBool("DB_MIGRATE", true); err != nil {
		errs = append(errs, err)
	}
	if cfg.JWTExpiration, err = utils.GetenvDuration("JWT_EXPIRATION", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.ViewTouchesUpdatedAt, err = utils.GetenvBool("VIEW_TOUCHES_UPDATED_AT", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.SeedDatabase, err = utils.GetenvBool("SEED_DATABASE", false); err != nil {
		errs = append(errs, err)
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AppEnv {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("APP_ENV: unknown environment %q", c.AppEnv)
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = DevJWTSecret
	}
	if c.JWTExpiration <= 0 {
		return errors.New("JWT_EXPIRATION must be positive")
	}
	if c.SeedDatabase && !utils.IsValidEmail(c.AdminEmail) {
		return fmt.Errorf("ADMIN_EMAIL: invalid email %q", c.AdminEmail)
	}
	return nil
}
