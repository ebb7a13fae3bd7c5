package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported values for DBDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSurreal  = "surrealdb"
)

// Config holds the application configuration.
type Config struct {
	ServerPort  int
	DBDriver    string
	DatabaseURL string

	MongoDatabase string

	SurrealNamespace string
	SurrealDatabase  string
	SurrealUser      string
	SurrealPass      string

	Secret      string        // HMAC key for signing tokens
	TokenTTL    time.Duration // Lifetime of issued tokens
	CORSOrigins []string
	LogLevel    string
	AppEnv      string
}

// Load loads configuration from environment variables or sets defaults,
// then lets command-line flags in args override them.
func Load(args []string) (*Config, error) {
	portStr := getEnv("PORT", "3001")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
	}

	ttlStr := getEnv("TOKEN_TTL", "1h")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttlStr, err)
	}

	cfg := &Config{
		ServerPort:       port,
		DBDriver:         getEnv("DB_DRIVER", DriverSQLite),
		DatabaseURL:      getEnv("DATABASE_URL", "./notes.db"),
		MongoDatabase:    getEnv("MONGO_DATABASE", "noteApp"),
		SurrealNamespace: getEnv("SURREAL_NAMESPACE", "notes"),
		SurrealDatabase:  getEnv("SURREAL_DATABASE", "notes"),
		SurrealUser:      getEnv("SURREAL_USER", "root"),
		SurrealPass:      getEnv("SURREAL_PASS", "root"),
		Secret:           getEnv("SECRET", ""),
		TokenTTL:         ttl,
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AppEnv:           getEnv("APP_ENV", "development"),
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("notes-be", flag.ContinueOnError)
	fs.IntVar(&c.ServerPort, "port", c.ServerPort, "HTTP port")
	fs.StringVar(&c.DBDriver, "driver", c.DBDriver, "storage backend: sqlite, postgres, mongo or surrealdb")
	fs.StringVar(&c.DatabaseURL, "db", c.DatabaseURL, "database DSN or URL")
	fs.StringVar(&c.Secret, "secret", c.Secret, "token signing secret")
	fs.DurationVar(&c.TokenTTL, "token-ttl", c.TokenTTL, "token lifetime")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	return fs.Parse(args)
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMongo, DriverSurreal:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.Secret == "" {
		return errors.New("SECRET must be set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
