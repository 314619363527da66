// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// Source kinds
const (
	SourceCSV       = "csv"
	SourcePostgres  = "postgres"
	SourceSnowflake = "snowflake"
)

// Config represents the application configuration
type Config struct {
	Source   SourceConfig
	Training TrainingConfig
	Server   ServerConfig

	// Database connections, only loaded when the source or the audit sink needs them
	Snowflake *SnowflakeConfig
	Postgres  *PostgresConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// SourceConfig selects where training rows come from
type SourceConfig struct {
	Kind         string
	Path         string
	Delimiter    string
	Schema       string
	Table        string
	QueryTimeout time.Duration
}

// TrainingConfig holds the training job settings
type TrainingConfig struct {
	ArtifactPath string
	TestFraction float64
	SplitSeed    int64
	AuditEnabled bool
	AuditSchema  string
}

// ServerConfig holds the prediction API settings
type ServerConfig struct {
	ListenAddr      string
	ArtifactPath    string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present; real environment
// variables win over it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	artifactPath := getEnv("ARTIFACT_PATH", "model/cif_model.json")
	cfg := &Config{
		Source: SourceConfig{
			Kind:         strings.ToLower(getEnv("SOURCE_KIND", SourceCSV)),
			Path:         getEnv("SOURCE_PATH", "data/Importaciones2024.csv"),
			Delimiter:    getEnv("SOURCE_DELIMITER", ","),
			Schema:       getEnv("SOURCE_SCHEMA", ""),
			Table:        getEnv("SOURCE_TABLE", ""),
			QueryTimeout: time.Duration(getEnvAsInt("SOURCE_QUERY_TIMEOUT_SECONDS", 300)) * time.Second,
		},
		Training: TrainingConfig{
			ArtifactPath: artifactPath,
			TestFraction: getEnvAsFloat("TEST_FRACTION", 0.2),
			SplitSeed:    int64(getEnvAsInt("SPLIT_SEED", 42)),
			AuditEnabled: getEnvAsBool("AUDIT_ENABLED", false),
			AuditSchema:  getEnv("AUDIT_SCHEMA", "public"),
		},
		Server: ServerConfig{
			ListenAddr:      getEnv("LISTEN_ADDR", ":8000"),
			ArtifactPath:    artifactPath,
			RequestTimeout:  time.Duration(getEnvAsInt("REQUEST_TIMEOUT_MS", 5000)) * time.Millisecond,
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
			AllowedOrigins:  getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	var errs error
	if cfg.Source.Kind == SourceSnowflake {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to load Snowflake configuration: %w", err))
		}
		cfg.Snowflake = snowConfig
	}
	if cfg.Source.Kind == SourcePostgres || cfg.Training.AuditEnabled {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to load PostgreSQL configuration: %w", err))
		}
		cfg.Postgres = pgConfig
	}
	if errs != nil {
		return nil, errs
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var errs error

	switch c.Source.Kind {
	case SourceCSV:
		if c.Source.Path == "" {
			errs = multierr.Append(errs, errors.New("SOURCE_PATH is required for csv sources"))
		}
	case SourcePostgres, SourceSnowflake:
		if c.Source.Table == "" {
			errs = multierr.Append(errs, fmt.Errorf("SOURCE_TABLE is required for %s sources", c.Source.Kind))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown source kind %q", c.Source.Kind))
	}

	if c.Source.Kind == SourceSnowflake && c.Snowflake == nil {
		errs = multierr.Append(errs, errors.New("snowflake configuration is required"))
	}
	if (c.Source.Kind == SourcePostgres || c.Training.AuditEnabled) && c.Postgres == nil {
		errs = multierr.Append(errs, errors.New("postgreSQL configuration is required"))
	}

	if c.Training.ArtifactPath == "" {
		errs = multierr.Append(errs, errors.New("artifact path cannot be empty"))
	}
	if c.Training.TestFraction <= 0 || c.Training.TestFraction >= 1 {
		errs = multierr.Append(errs, fmt.Errorf("test fraction must be in (0, 1), got %v", c.Training.TestFraction))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = multierr.Append(errs, errors.New("request timeout must be positive"))
	}
	if c.Server.ListenAddr == "" {
		errs = multierr.Append(errs, errors.New("listen address cannot be empty"))
	}

	return errs
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsStringSlice parses a comma separated list, dropping empty entries
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}
	return result
}
