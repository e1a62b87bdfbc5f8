package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// EnvDev keeps gin in debug mode and lowers the log level to debug.
const EnvDev = "dev"

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"5000" validate:"gte=0,lte=65535"`

	// Store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo" validate:"oneof=mongo postgres redis memory"`
	DBUser      string `env:"DB_USER"`
	DBPass      string `env:"DB_PASS"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost:27017"`
	DBName      string `env:"DB_NAME" envDefault:"bistro" validate:"required"`
	MongoURI    string `env:"MONGO_URI"`
	PostgresURL string `env:"POSTGRES_URL" validate:"required_if=StoreDriver postgres"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Tokens
	TokenSecret string        `env:"TOKEN_SECRET" validate:"required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"1h" validate:"gt=0"`

	// Optional bootstrap admin
	AdminEmail string `env:"ADMIN_EMAIL" validate:"omitempty,email"`

	// HTTP
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"1048576" validate:"gt=0"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Tracing is off unless an endpoint is given.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"bistro-api"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// MongoURL returns MONGO_URI when set, otherwise a URI built from the DB_* parts.
func (c Config) MongoURL() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}

	u := url.URL{
		Scheme:   "mongodb",
		Host:     c.DBHost,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}

	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPass)
	}

	return u.String()
}

func (c Config) AllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
