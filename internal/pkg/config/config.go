package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// DevSessionSecret signs session cookies when SESSION_SECRET is unset. It is
// public, so it must never be used outside local development.
const DevSessionSecret = "loci-explore-dev-session-secret"

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type MongoConfig struct {
	URI      string
	Database string
}

type RepositoriesConfig struct {
	Driver   string
	Postgres PostgresConfig
	Mongo    MongoConfig
}

type ChatConfig struct {
	BackendURL string
	Timeout    time.Duration
}

type ObservabilityConfig struct {
	ServiceName  string
	MetricsAddr  string
	PprofAddr    string
	OTLPEndpoint string
}

type Config struct {
	Repositories  RepositoriesConfig
	Chat          ChatConfig
	Observability ObservabilityConfig
	ServerPort    string
	SessionSecret string
	LogLevel      string
	LogFormat     string

	// CORSAllowedOrigins are the browser origins allowed to call the API and
	// open the tracking socket.
	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Driver: strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverPostgres)),
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5454"),
				DB:       getEnvOrDefault("POSTGRES_DB", "loci_explore"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
			Mongo: MongoConfig{
				URI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
				Database: getEnvOrDefault("MONGODB_DATABASE", "Location-Description"),
			},
		},
		Chat: ChatConfig{
			BackendURL: strings.TrimRight(getEnvOrDefault("CHAT_BACKEND_URL", "http://localhost:5000"), "/"),
		},
		Observability: ObservabilityConfig{
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "loci-explore"),
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			PprofAddr:    lookupEnvOrDefault("PPROF_ADDR", ":6060"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4318"),
		},
		ServerPort:    getEnvOrDefault("SERVER_PORT", "8091"),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", DevSessionSecret),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
	}
	cfg.CORSAllowedOrigins = splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"))

	timeout, err := time.ParseDuration(getEnvOrDefault("CHAT_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_TIMEOUT: %w", err)
	}
	cfg.Chat.Timeout = timeout

	switch cfg.Repositories.Driver {
	case StoreDriverPostgres:
		if cfg.Repositories.Postgres.Password == "" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
		}
	case StoreDriverMongo:
		if cfg.Repositories.Mongo.URI == "" {
			return nil, fmt.Errorf("MONGODB_URI environment variable is required")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Repositories.Driver)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnvOrDefault keeps an explicitly empty value, which disables the feature.
func lookupEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// UsesDevSessionSecret reports whether session cookies are signed with the public default key.
func (c *Config) UsesDevSessionSecret() bool {
	return c.SessionSecret == DevSessionSecret
}

// splitList parses a comma separated list, dropping blanks and trailing slashes.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimRight(strings.TrimSpace(item), "/")
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
