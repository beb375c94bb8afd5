package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Odoo   OdooConfig   `mapstructure:"odoo"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// OdooConfig holds the ERP connection settings
type OdooConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// JournalsFile points at the bank-journal allow-list resource.
	JournalsFile string `mapstructure:"journals_file"`
}

// CacheConfig holds snapshot cache configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Odoo defaults
	viper.SetDefault("odoo.url", "http://localhost:8069")
	viper.SetDefault("odoo.database", "Testbed_restore")
	viper.SetDefault("odoo.username", "admin")
	viper.SetDefault("odoo.password", "n!md4")
	viper.SetDefault("odoo.journals_file", "configs/bank_journals.json")

	// Cache defaults
	viper.SetDefault("cache.ttl", 5*time.Second)
	viper.SetDefault("cache.refresh_interval", 10*time.Second)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Connection settings from environment, matching the names the ops
	// scripts already export
	viper.BindEnv("odoo.url", "ODOO_URL")
	viper.BindEnv("odoo.database", "ODOO_DB")
	viper.BindEnv("odoo.username", "ODOO_USERNAME")
	viper.BindEnv("odoo.password", "ODOO_PASSWORD")
	viper.BindEnv("odoo.journals_file", "ODOO_JOURNALS_FILE")
	viper.BindEnv("server.port", "PORT")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Odoo.URL == "" {
		return fmt.Errorf("odoo.url is required")
	}
	if c.Odoo.Database == "" {
		return fmt.Errorf("odoo.database is required")
	}
	if c.Odoo.Username == "" {
		return fmt.Errorf("odoo.username is required")
	}
	if c.Odoo.Password == "" {
		return fmt.Errorf("odoo.password is required")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Cache.RefreshInterval <= 0 {
		return fmt.Errorf("cache.refresh_interval must be positive")
	}
	return nil
}
