package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Email    EmailConfig    `mapstructure:"email"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// BasePath prefixes every route, matching deployments behind a shared
	// reverse proxy (e.g. "/usr/388").
	BasePath string `mapstructure:"base_path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// AuthConfig defines credential-handling configuration.
type AuthConfig struct {
	// Pepper is the server-wide secret combined with every password before
	// hashing. The process refuses to start without it.
	Pepper        string        `mapstructure:"pepper"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
}

type RedisConfig struct {
	// Enabled selects the redis-backed notice store; when false an
	// in-process store is used instead.
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type EmailConfig struct {
	// Enabled switches from the simulated (log-only) notifier to real SMTP.
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	From         string `mapstructure:"from"`
}

type LoggingConfig struct {
	Level  string            `mapstructure:"level"`
	Format string            `mapstructure:"format"`
	File   LoggingFileConfig `mapstructure:"file"`
}

type LoggingFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// --- Environment Variable Handling ---
	viper.AutomaticEnv()
	// Use replacer for nested keys e.g., server.address -> SERVER_ADDRESS,
	// auth.pepper -> AUTH_PEPPER
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// --- Set default values ---
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("server.base_path", "")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "physiohub")
	viper.SetDefault("database.name", "physiohub")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("auth.jwt_expiration", "1h")
	viper.SetDefault("auth.bcrypt_cost", 12)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.file.max_size_mb", 50)
	viper.SetDefault("logging.file.max_backups", 3)
	viper.SetDefault("logging.file.max_age_days", 28)

	// --- Read Config File ---
	err = viper.ReadInConfig()
	// Config file is optional; env vars alone are a valid deployment.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// --- Unmarshal Config ---
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, config.Validate()
}

// Validate enforces the fail-closed startup conditions: running without the
// pepper or the token secret would silently weaken every credential.
func (c *Config) Validate() error {
	if c.Auth.Pepper == "" {
		return errors.New("auth.pepper is not set; refusing to start with unpeppered password hashing")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not set")
	}
	if c.Auth.BcryptCost < 10 {
		return fmt.Errorf("auth.bcrypt_cost %d is below the supported minimum of 10", c.Auth.BcryptCost)
	}
	return nil
}
