package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskboard-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/taskboard-api/shared/auth"
)

// AuthServiceConfig holds the configuration of the auth service process.
type AuthServiceConfig struct {
	Environment         string `env:"APP_ENV"            envDefault:"production"`
	HTTPAddr            string `env:"AUTH_HTTP_ADDR"     envDefault:":8081"`
	GRPCAddr            string `env:"AUTH_GRPC_ADDR"     envDefault:":9081"`
	GRPCAdvertiseAddr   string `env:"AUTH_GRPC_ADVERTISE_ADDR"`
	ServiceName         string `env:"AUTH_SERVICE_NAME"  envDefault:"auth-service"`
	ConsulAddr          string `env:"CONSUL_ADDR"`
	AppPasswordResetURL string `env:"PASSWORD_RESET_URL" envDefault:"http://localhost:5173/reset-password"`

	Token TokenConfig
	Store StoreConfig
}

// TokenConfig configures identity and password reset tokens.
type TokenConfig struct {
	SigningKeyBase64            string        `env:"JWT_SECRET_KEY"`
	Issuer                      string        `env:"JWT_ISSUER"                      envDefault:"taskboard"`
	ExpiresIn                   time.Duration `env:"JWT_EXPIRES_IN"                  envDefault:"15m"`
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TOKEN_EXPIRES_IN" envDefault:"5m"`

	signingKey []byte
}

// SigningKey returns the decoded JWT_SECRET_KEY.
func (c TokenConfig) SigningKey() []byte { return c.signingKey }

// StoreConfig selects the credential store backend.
type StoreConfig struct {
	Driver        string `env:"STORE_DRIVER"   envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"taskboard"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
}

// Repository converts the store settings to the repository package's form.
func (c StoreConfig) Repository() repository.StoreConfig {
	return repository.StoreConfig{
		Driver:        c.Driver,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		PostgresDSN:   c.PostgresDSN,
	}
}

// NewAuthServiceConfig loads the configuration from the environment and exits on failure.
func NewAuthServiceConfig(logger *zerolog.Logger) *AuthServiceConfig {
	cfg, err := Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load auth service configuration")
	}

	return cfg
}

// Load parses and validates the configuration from the environment.
func Load() (*AuthServiceConfig, error) {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AuthServiceConfig) validate() error {
	if c.Token.SigningKeyBase64 == "" {
		return fmt.Errorf("missing JWT_SECRET_KEY environment variable")
	}

	key, err := auth.DecodeSigningKey(c.Token.SigningKeyBase64)
	if err != nil {
		return fmt.Errorf("invalid JWT_SECRET_KEY: %w", err)
	}
	c.Token.signingKey = key

	if c.Token.ExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive")
	}
	if c.Token.PasswordResetTokenExpiresIn <= 0 {
		return fmt.Errorf("PASSWORD_RESET_TOKEN_EXPIRES_IN must be positive")
	}

	switch c.Store.Driver {
	case repository.DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("missing MONGO_URI environment variable")
		}
	case repository.DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("missing POSTGRES_DSN environment variable")
		}
	case repository.DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.AppPasswordResetURL == "" {
		return fmt.Errorf("missing PASSWORD_RESET_URL environment variable")
	}

	return nil
}
