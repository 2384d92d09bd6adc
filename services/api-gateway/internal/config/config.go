package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskboard-api/shared/auth"
)

// GatewayConfig holds the configuration of the API gateway process.
type GatewayConfig struct {
	Environment           string   `env:"APP_ENV"                  envDefault:"production"`
	HTTPAddr              string   `env:"GATEWAY_HTTP_ADDR"        envDefault:":8080"`
	SigningKeyBase64      string   `env:"JWT_SECRET_KEY"`
	Issuer                string   `env:"JWT_ISSUER"               envDefault:"taskboard"`
	AuthServiceURL        string   `env:"AUTH_SERVICE_URL"         envDefault:"http://localhost:8081"`
	AuthServiceGRPCTarget string   `env:"AUTH_SERVICE_GRPC_TARGET" envDefault:"localhost:9081"`
	TaskServiceURL        string   `env:"TASK_SERVICE_URL"         envDefault:"http://localhost:8082"`
	PublicPathPrefixes    []string `env:"PUBLIC_PATH_PREFIXES"     envDefault:"/api/auth/,/api/password/" envSeparator:","`
	CORSAllowedOrigins    []string `env:"CORS_ALLOWED_ORIGINS"     envDefault:"http://localhost:5173"     envSeparator:","`

	signingKey  []byte
	authService *url.URL
	taskService *url.URL
}

// SigningKey returns the decoded JWT_SECRET_KEY.
func (c *GatewayConfig) SigningKey() []byte { return c.signingKey }

func (c *GatewayConfig) AuthService() *url.URL { return c.authService }

func (c *GatewayConfig) TaskService() *url.URL { return c.taskService }

// NewGatewayConfig loads the configuration from the environment and exits on failure.
func NewGatewayConfig(logger *zerolog.Logger) *GatewayConfig {
	cfg, err := Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load gateway configuration")
	}

	return cfg
}

// Load parses and validates the configuration from the environment.
func Load() (*GatewayConfig, error) {
	cfg, err := env.ParseAs[GatewayConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *GatewayConfig) validate() error {
	if c.SigningKeyBase64 == "" {
		return fmt.Errorf("missing JWT_SECRET_KEY environment variable")
	}

	key, err := auth.DecodeSigningKey(c.SigningKeyBase64)
	if err != nil {
		return fmt.Errorf("invalid JWT_SECRET_KEY: %w", err)
	}
	c.signingKey = key

	if c.authService, err = parseUpstream("AUTH_SERVICE_URL", c.AuthServiceURL); err != nil {
		return err
	}
	if c.taskService, err = parseUpstream("TASK_SERVICE_URL", c.TaskServiceURL); err != nil {
		return err
	}

	if c.AuthServiceGRPCTarget == "" {
		return fmt.Errorf("missing AUTH_SERVICE_GRPC_TARGET environment variable")
	}

	prefixes := c.PublicPathPrefixes[:0]
	for _, prefix := range c.PublicPathPrefixes {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			prefixes = append(prefixes, prefix)
		}
	}
	c.PublicPathPrefixes = prefixes

	return nil
}

func parseUpstream(name, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return u, nil
}
