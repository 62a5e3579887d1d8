package config

import (
	"os"
	"strconv"
	"strings"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Paths    PathConfig
	Engine   analysis.Config
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	Host    string
	Port    int
	User    string
	Name    string
	SSLMode string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// PathConfig holds file system paths
type PathConfig struct {
	InputFile string
	ReportDir string
}

// Load reads configuration from environment variables. Engine settings
// default to analysis.DefaultConfig and are overridden individually.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			Host:    getEnvOrDefault("DB_HOST", "localhost"),
			Port:    getEnvIntOrDefault("DB_PORT", 5432),
			User:    getEnvOrDefault("DB_USER", ""),
			Name:    getEnvOrDefault("DB_NAME", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Paths: PathConfig{
			InputFile: getEnvOrDefault("INPUT_FILE", ""),
			ReportDir: getEnvOrDefault("REPORT_DIR", "./reports"),
		},
		Engine: loadEngineConfig(),
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEngineConfig() analysis.Config {
	engine := analysis.DefaultConfig()

	if methods := os.Getenv("OUTLIER_METHODS"); methods != "" {
		engine.OutlierMethods = parseOutlierMethods(methods)
	}
	engine.OutlierParams.IQRMultiplier = getEnvFloatOrDefault("IQR_MULTIPLIER", engine.OutlierParams.IQRMultiplier)
	engine.OutlierParams.ZScoreThreshold = getEnvFloatOrDefault("ZSCORE_THRESHOLD", engine.OutlierParams.ZScoreThreshold)
	engine.OutlierParams.ModifiedZThreshold = getEnvFloatOrDefault("MODIFIED_ZSCORE_THRESHOLD", engine.OutlierParams.ModifiedZThreshold)
	engine.OutlierParams.PercentileLow = getEnvFloatOrDefault("PERCENTILE_LOW", engine.OutlierParams.PercentileLow)
	engine.OutlierParams.PercentileHigh = getEnvFloatOrDefault("PERCENTILE_HIGH", engine.OutlierParams.PercentileHigh)
	engine.MinOutlierSampleSize = getEnvIntOrDefault("MIN_OUTLIER_SAMPLE_SIZE", engine.MinOutlierSampleSize)

	if method := os.Getenv("CORRELATION_METHOD"); method != "" {
		engine.CorrelationMethod = analysis.CorrelationMethod(method)
	}
	engine.NumericAsCategoricalMaxCardinality = getEnvIntOrDefault("NUMERIC_AS_CATEGORICAL_MAX", engine.NumericAsCategoricalMaxCardinality)
	engine.MissingnessSimilarityThreshold = getEnvFloatOrDefault("MISSINGNESS_SIMILARITY_THRESHOLD", engine.MissingnessSimilarityThreshold)
	engine.SignificanceLevel = getEnvFloatOrDefault("SIGNIFICANCE_LEVEL", engine.SignificanceLevel)
	engine.ExactQuantileSizeLimit = getEnvIntOrDefault("EXACT_QUANTILE_SIZE_LIMIT", engine.ExactQuantileSizeLimit)
	engine.CategoricalTopK = getEnvIntOrDefault("CATEGORICAL_TOP_K", engine.CategoricalTopK)
	engine.SchemaMatchFraction = getEnvFloatOrDefault("SCHEMA_MATCH_FRACTION", engine.SchemaMatchFraction)
	engine.Workers = getEnvIntOrDefault("ANALYSIS_WORKERS", engine.Workers)

	return engine
}

func parseOutlierMethods(raw string) []analysis.OutlierMethod {
	parts := strings.Split(raw, ",")
	methods := make([]analysis.OutlierMethod, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		methods = append(methods, analysis.OutlierMethod(part))
	}
	return methods
}

// RequireDatabase checks the settings a Postgres-backed store needs
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return core.NewConfigError("DATABASE_URL", "required for the result store")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
