package config

import (
	"fmt"
	"os"
	"time"

	"unlistedtube/pkg/utils"

	"gopkg.in/yaml.v2"
)

// DefaultJWTSecret is used when no signing secret is configured. It is only
// acceptable for local development.
const DefaultJWTSecret = "fallback_secret"

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		URI              string        `yaml:"uri"`
		Name             string        `yaml:"name"`
		Collection       string        `yaml:"collection"`
		PoolSize         int           `yaml:"pool_size"`
		ConnectTimeout   time.Duration `yaml:"connect_timeout"`
		OperationTimeout time.Duration `yaml:"operation_timeout"`
		ConnectRetry     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			InitialDelay time.Duration `yaml:"initial_delay"`
			MaxDelay     time.Duration `yaml:"max_delay"`
		} `yaml:"connect_retry"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret    string `yaml:"jwt_secret"`
		Email        string `yaml:"email"`
		Password     string `yaml:"password"`
		SecureCookie bool   `yaml:"secure_cookie"`
	} `yaml:"auth"`

	CircuitBreaker struct {
		Enabled          bool          `yaml:"enabled"`
		FailureThreshold int           `yaml:"failure_threshold"`
		SuccessThreshold int           `yaml:"success_threshold"`
		Timeout          time.Duration `yaml:"timeout"`
	} `yaml:"circuit_breaker"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Database
	if utils.IsEmpty(c.Database.URI) {
		return fmt.Errorf("database.uri must not be empty (set MONGODB_URI)")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name must not be empty")
	}
	if c.Database.Collection == "" {
		return fmt.Errorf("database.collection must not be empty")
	}
	if c.Database.PoolSize <= 0 {
		return fmt.Errorf("database.pool_size must be > 0")
	}
	if c.Database.ConnectTimeout <= 0 {
		return fmt.Errorf("database.connect_timeout must be > 0")
	}
	if c.Database.OperationTimeout <= 0 {
		return fmt.Errorf("database.operation_timeout must be > 0")
	}
	if c.Database.ConnectRetry.MaxAttempts < 0 {
		return fmt.Errorf("database.connect_retry.max_attempts must be >= 0")
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.Email == "" || c.Auth.Password == "" {
		return fmt.Errorf("auth.email and auth.password must both be set")
	}

	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.FailureThreshold <= 0 {
			return fmt.Errorf("circuit_breaker.failure_threshold must be > 0 when enabled")
		}
		if c.CircuitBreaker.SuccessThreshold <= 0 {
			return fmt.Errorf("circuit_breaker.success_threshold must be > 0 when enabled")
		}
		if c.CircuitBreaker.Timeout <= 0 {
			return fmt.Errorf("circuit_breaker.timeout must be > 0 when enabled")
		}
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	return nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in
// development secret.
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.JWTSecret == DefaultJWTSecret
}

// Load reads configuration from YAML file, applies defaults and env overrides.
// A missing file is not an error; the result is always validated.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if utils.IsEmpty(cfg.Auth.JWTSecret) {
		cfg.Auth.JWTSecret = DefaultJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults. Database.URI has no
// default: it must come from the file or the environment.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 10 * time.Second
	cfg.Server.ShutdownTimeout = 15 * time.Second

	cfg.Database.Name = "videocollections"
	cfg.Database.Collection = "videos"
	cfg.Database.PoolSize = 10
	cfg.Database.ConnectTimeout = 10 * time.Second
	cfg.Database.OperationTimeout = 5 * time.Second
	cfg.Database.ConnectRetry.MaxAttempts = 3
	cfg.Database.ConnectRetry.InitialDelay = 500 * time.Millisecond
	cfg.Database.ConnectRetry.MaxDelay = 5 * time.Second

	cfg.Auth.JWTSecret = DefaultJWTSecret
	cfg.Auth.Email = "owner@example.com"
	cfg.Auth.Password = "supersecret"

	cfg.CircuitBreaker.Enabled = true
	cfg.CircuitBreaker.FailureThreshold = 5
	cfg.CircuitBreaker.SuccessThreshold = 1
	cfg.CircuitBreaker.Timeout = 15 * time.Second

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if uri := firstEnv("UNLISTED_DATABASE_URI", "MONGODB_URI"); uri != "" {
		c.Database.URI = uri
	}
	if secret := firstEnv("UNLISTED_JWT_SECRET", "JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if email := os.Getenv("UNLISTED_AUTH_EMAIL"); email != "" {
		c.Auth.Email = email
	}
	if password := os.Getenv("UNLISTED_AUTH_PASSWORD"); password != "" {
		c.Auth.Password = password
	}
	if addr := os.Getenv("UNLISTED_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("UNLISTED_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok && v != "" {
			return v
		}
	}
	return ""
}
