package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Runtime    RuntimeConfig    `mapstructure:"runtime"`
	Invocation InvocationConfig `mapstructure:"invocation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds MCP server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// RuntimeConfig holds micromamba runtime configuration
type RuntimeConfig struct {
	EnvName       string `mapstructure:"env_name"`
	PythonVersion string `mapstructure:"python_version"`
	RootPrefix    string `mapstructure:"root_prefix"`
}

// InvocationConfig holds the default script invocation parameters
type InvocationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	ModelName   string  `mapstructure:"model_name"`
	MaxRetries  int     `mapstructure:"max_retries"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("runtime.env_name", "langchain")
	viper.SetDefault("runtime.python_version", "3.11")
	viper.SetDefault("runtime.root_prefix", DefaultRootPrefix())
	viper.SetDefault("invocation.temperature", 0.0)
	viper.SetDefault("invocation.model_name", "gpt-4o-mini")
	viper.SetDefault("invocation.max_retries", 3)
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Runtime.EnvName == "" {
		return fmt.Errorf("runtime.env_name must not be empty")
	}

	if c.Runtime.PythonVersion == "" {
		return fmt.Errorf("runtime.python_version must not be empty")
	}

	if c.Runtime.RootPrefix == "" {
		return fmt.Errorf("runtime.root_prefix must not be empty")
	}

	if c.Invocation.MaxRetries < 0 {
		return fmt.Errorf("invocation.max_retries must not be negative, got: %d", c.Invocation.MaxRetries)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	return nil
}

// ReadDotEnv reads a dotenv file into a key/value map without touching
// the process environment. Callers thread the map explicitly into the
// script invocation instead of relying on ambient state.
func ReadDotEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("error reading dotenv file %s: %w", path, err)
	}
	return env, nil
}

// DefaultRootPrefix returns the micromamba root prefix under the
// platform application-data directory.
func DefaultRootPrefix() string {
	dir, err := appDataDir()
	if err != nil {
		// No resolvable home directory; fall back to a relative prefix
		return "micromamba"
	}
	return filepath.Join(dir, "micromamba")
}
