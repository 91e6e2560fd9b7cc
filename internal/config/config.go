package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Serial   SerialConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL string
}

// SerialConfig holds the defaults for the device serial link. Port may be
// empty, in which case every send request must name one explicitly.
type SerialConfig struct {
	Port     string
	BaudRate int
}

// SecurityConfig holds data-at-rest encryption configuration. The key is a
// hex-encoded 32-byte AES-256 key; when empty, medical notes are stored in
// plaintext.
type SecurityConfig struct {
	EncryptionKey string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)

	// 9600 8N1 is what the wearable's UART bootloader listens at.
	v.SetDefault("serial.baudrate", 9600)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")

	v.BindEnv("database.url", "DATABASE_URL")

	v.BindEnv("serial.port", "SERIAL_PORT")
	v.BindEnv("serial.baudrate", "SERIAL_BAUD_RATE")

	v.BindEnv("security.encryptionkey", "ENCRYPTION_KEY")

	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baudrate must be positive")
	}

	return nil
}
