package config

import (
	"os"
	"strconv"
	"time"

	"burnoutd/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Model    ModelConfig    `validate:"required"`
	Agent    AgentConfig    `validate:"required"`
	SMTP     SMTPConfig
	Paths    PathConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string `validate:"required"`
	Host    string
	Port    int
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string `validate:"required"`
}

// ModelConfig holds model file locations and reload behavior
type ModelConfig struct {
	// ModelPath is the serving model file the registry loads and watches.
	ModelPath string
	// ModelsDir receives versioned model files written by retraining.
	ModelsDir string
	// DataDir receives versioned training datasets.
	DataDir string
	// AutoReload enables the filesystem watcher on ModelPath.
	AutoReload bool
	// ReloadMinInterval rate-limits mtime-based reload checks.
	ReloadMinInterval time.Duration
}

// AgentConfig holds agent worker and learning worker settings
type AgentConfig struct {
	// TickInterval is how often the agent worker polls the queue.
	TickInterval time.Duration
	// BatchSize caps how many logs one tick processes.
	BatchSize int
	// LearningInterval is how often the learning worker evaluates retraining.
	LearningInterval time.Duration
	// ConfidenceThreshold is the global review cutoff for non-critical risk.
	ConfidenceThreshold float64
}

// SMTPConfig holds outbound mail settings; empty host disables email.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AlertTo  string
	ReviewTo string
}

// PathConfig holds file system paths
type PathConfig struct {
	ExcelFile string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Development bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = *loadServerConfig()
	config.Model = *loadModelConfig()
	config.Agent = *loadAgentConfig()
	config.SMTP = *loadSMTPConfig()
	config.Paths = *loadPathConfig()
	config.Logging = *loadLoggingConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:     url,
		Host:    getEnvOrDefault("DB_HOST", ""),
		Port:    getEnvIntOrDefault("DB_PORT", 5432),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadModelConfig() *ModelConfig {
	return &ModelConfig{
		ModelPath:         getEnvOrDefault("MODEL_PATH", "./data/models/burnout_model.json"),
		ModelsDir:         getEnvOrDefault("MODELS_DIR", "./data/models"),
		DataDir:           getEnvOrDefault("DATA_DIR", "./data/datasets"),
		AutoReload:        getEnvBoolOrDefault("MODEL_AUTO_RELOAD", true),
		ReloadMinInterval: getEnvDurationOrDefault("MODEL_RELOAD_MIN_INTERVAL", 5*time.Second),
	}
}

func loadAgentConfig() *AgentConfig {
	return &AgentConfig{
		TickInterval:        getEnvDurationOrDefault("AGENT_TICK_INTERVAL", 30*time.Second),
		BatchSize:           getEnvIntOrDefault("AGENT_BATCH_SIZE", 10),
		LearningInterval:    getEnvDurationOrDefault("LEARNING_INTERVAL", 1*time.Hour),
		ConfidenceThreshold: getEnvFloatOrDefault("CONFIDENCE_THRESHOLD", 0.70),
	}
}

func loadSMTPConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:     getEnvOrDefault("SMTP_HOST", ""),
		Port:     getEnvIntOrDefault("SMTP_PORT", 587),
		User:     getEnvOrDefault("SMTP_USER", ""),
		Password: getEnvOrDefault("SMTP_PASS", ""),
		From:     getEnvOrDefault("SMTP_FROM", "burnoutd@localhost"),
		AlertTo:  getEnvOrDefault("ALERT_TO", ""),
		ReviewTo: getEnvOrDefault("REVIEW_TO", ""),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		ExcelFile: getEnvOrDefault("EXCEL_FILE", ""),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Development: getEnvBoolOrDefault("LOG_DEV", false),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Agent.BatchSize < 1 {
		return errors.ConfigInvalid("AGENT_BATCH_SIZE must be at least 1")
	}
	if config.Agent.ConfidenceThreshold < 0 || config.Agent.ConfidenceThreshold > 1 {
		return errors.ConfigInvalid("CONFIDENCE_THRESHOLD must be within [0, 1]")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
