package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings
const (
	EnvPublicPath = "PUBLIC_PATH"
	EnvDataPath   = "DATA_PATH"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig `yaml:"server"`
	Static  StaticConfig `yaml:"static"`
	Data    DataConfig   `yaml:"data"`
	Retry   RetryConfig  `yaml:"retry"`
	Logging LogConfig    `yaml:"logging"`
}

// ServerConfig contains settings for the listener and per-connection limits
type ServerConfig struct {
	Address         string `yaml:"address"`
	ReadTimeout     int    `yaml:"read_timeout"`  // in seconds
	WriteTimeout    int    `yaml:"write_timeout"` // in seconds
	MaxConnections  int    `yaml:"max_connections"`
	MaxRequestBytes int    `yaml:"max_request_bytes"`
}

// StaticConfig contains settings for static page handling
type StaticConfig struct {
	PublicPath string `yaml:"public_path"`
}

// DataConfig contains settings for the order data
type DataConfig struct {
	DataPath   string `yaml:"data_path"`
	OrdersFile string `yaml:"orders_file"`
}

// RetryConfig contains settings for client dial retries
type RetryConfig struct {
	Enabled         bool     `yaml:"enabled"`
	MaxRetries      int      `yaml:"max_retries"`
	InitialDelay    int      `yaml:"initial_delay"` // in milliseconds
	MaxDelay        int      `yaml:"max_delay"`     // in milliseconds
	BackoffFactor   float64  `yaml:"backoff_factor"`
	JitterFactor    float64  `yaml:"jitter_factor"`
	RetryableErrors []string `yaml:"retryable_errors"`
}

// LogConfig contains settings for logging
type LogConfig struct {
	LogToFile       bool   `yaml:"log_to_file"`
	LogFilePath     string `yaml:"log_file_path"`
	MaxSize         int    `yaml:"max_size"`          // maximum size in megabytes
	MaxBackups      int    `yaml:"max_backups"`       // maximum number of old log files to retain
	MaxAge          int    `yaml:"max_age"`           // maximum number of days to retain old log files
	Compress        bool   `yaml:"compress"`          // compress determines if the rotated log files should be compressed
	ExchangeLogPath string `yaml:"exchange_log_path"` // raw request/response dump, empty disables it
}

// LoadDefault returns a configuration with default values
func LoadDefault() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         "0.0.0.0:7879",
			ReadTimeout:     10,
			WriteTimeout:    10,
			MaxConnections:  64,
			MaxRequestBytes: 64 * 1024,
		},
		Static: StaticConfig{
			PublicPath: "public",
		},
		Data: DataConfig{
			DataPath:   "data",
			OrdersFile: "orders.json",
		},
		Retry: RetryConfig{
			Enabled:       true,
			MaxRetries:    3,
			InitialDelay:  200,
			MaxDelay:      2000,
			BackoffFactor: 2.0,
			JitterFactor:  0.1,
			RetryableErrors: []string{
				"connection refused",
				"connection reset",
				"timeout",
			},
		},
		Logging: LogConfig{
			LogToFile:   false,
			LogFilePath: "tinyhttpd.log",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      28,
			Compress:    true,
		},
	}
}

// Default returns a configuration with default values and environment
// overrides applied
func Default() *Config {
	cfg := LoadDefault()
	cfg.applyEnv()
	return cfg
}

// Load reads configuration from a file on top of the default values
func Load(configPath string) (*Config, error) {
	cfg := LoadDefault()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys present in the file replace the defaults, including false and zero values
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadOrDefault attempts to load configuration from a file
// If the file doesn't exist or can't be parsed, it returns default configuration
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", configPath, err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg = Default()
	}
	return cfg
}

// OrdersPath returns the full path of the orders file
func (c *Config) OrdersPath() string {
	return filepath.Join(c.Data.DataPath, c.Data.OrdersFile)
}

// applyEnv lets PUBLIC_PATH and DATA_PATH take precedence over the file
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPublicPath); v != "" {
		c.Static.PublicPath = v
	}
	if v := os.Getenv(EnvDataPath); v != "" {
		c.Data.DataPath = v
	}
}
