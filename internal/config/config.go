package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the console configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Login   LoginConfig   `yaml:"login"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// APIConfig contains settings for the remote buyer-leads API
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SessionConfig contains session store settings
type SessionConfig struct {
	// Backend selects the token store: memory, redis, mysql, or postgres
	Backend         string         `yaml:"backend"`
	CookieName      string         `yaml:"cookie_name"`
	TTLHours        int            `yaml:"ttl_hours"`
	CacheTTLMinutes int            `yaml:"cache_ttl_minutes"`
	SweepSchedule   string         `yaml:"sweep_schedule"`
	Redis           RedisConfig    `yaml:"redis"`
	MySQL           MySQLConfig    `yaml:"mysql"`
	Postgres        PostgresConfig `yaml:"postgres"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// LoginConfig contains login throttling settings
type LoginConfig struct {
	RateLimitEnabled  bool `yaml:"rate_limit_enabled"`
	AttemptsPerMinute int  `yaml:"attempts_per_minute"`
	AttemptsPerHour   int  `yaml:"attempts_per_hour"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogRequests bool `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8090",
			CORSOrigins: []string{"http://localhost:8090"},
		},
		API: APIConfig{
			BaseURL:        "http://localhost:4000/api",
			TimeoutSeconds: 30,
		},
		Session: SessionConfig{
			Backend:         "memory",
			CookieName:      "bl_session",
			TTLHours:        24,
			CacheTTLMinutes: 5,
			SweepSchedule:   "@every 15m",
		},
		Login: LoginConfig{
			RateLimitEnabled:  true,
			AttemptsPerMinute: 10,
			AttemptsPerHour:   100,
		},
		Logging: LoggingConfig{
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetTimeout returns the remote API timeout as a duration
func (c *APIConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetTTL returns the session lifetime as a duration
func (c *SessionConfig) GetTTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// GetCacheTTL returns the identity cache lifetime as a duration
func (c *SessionConfig) GetCacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}
