// Package config reads the server configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/lborres/evently/core"
	"github.com/lborres/evently/pkg/crypto"
)

const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"

	RecoveryMemory = "memory"
	RecoveryRedis  = "redis"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":5000"`
	BasePath string `env:"BASE_PATH"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	PasswordHasher string `env:"PASSWORD_HASHER" envDefault:"bcrypt"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"event"`
	DatabaseURL   string `env:"DATABASE_URL"`

	RecoveryStore       string        `env:"RECOVERY_STORE" envDefault:"memory"`
	RedisAddr           string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" envDefault:"0"`
	RecoveryTTL         time.Duration `env:"RECOVERY_TTL" envDefault:"15m"`
	RecoveryMaxAttempts int           `env:"RECOVERY_MAX_ATTEMPTS" envDefault:"0"`

	SMTPHost  string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort  int    `env:"SMTP_PORT" envDefault:"587"`
	EmailUser string `env:"EMAIL_USER,required,notEmpty"`
	EmailPass string `env:"EMAIL_PASS,required,notEmpty"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set take precedence over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parse env: %w", core.ErrConfig, err)
	}

	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)
	cfg.RecoveryStore = strings.ToLower(cfg.RecoveryStore)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) < crypto.MinSecretLength {
		return fmt.Errorf("%w: JWT_SECRET must be at least %d bytes", core.ErrConfig, crypto.MinSecretLength)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", core.ErrConfig)
	}
	if c.RecoveryTTL < 0 {
		return fmt.Errorf("%w: RECOVERY_TTL must not be negative", core.ErrConfig)
	}
	if c.RecoveryMaxAttempts < 0 {
		return fmt.Errorf("%w: RECOVERY_MAX_ATTEMPTS must not be negative", core.ErrConfig)
	}

	switch c.StorageDriver {
	case StorageMongo:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres driver", core.ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown STORAGE_DRIVER %q", core.ErrConfig, c.StorageDriver)
	}

	switch c.RecoveryStore {
	case RecoveryMemory, RecoveryRedis:
	default:
		return fmt.Errorf("%w: unknown RECOVERY_STORE %q", core.ErrConfig, c.RecoveryStore)
	}

	if _, err := crypto.NewPasswordHandler(c.PasswordHasher, c.BcryptCost); err != nil {
		return err
	}
	return nil
}

// Recovery returns the recovery protocol settings
func (c *Config) Recovery() core.RecoveryConfig {
	rc := core.DefaultRecoveryConfig()
	rc.TTL = c.RecoveryTTL
	rc.MaxAttempts = c.RecoveryMaxAttempts
	return rc
}
