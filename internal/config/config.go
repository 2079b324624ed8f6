package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Hub      HubConfig
	Auth     AuthConfig
	MaxMind  MaxMindConfig
	Fetch    FetchConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns a libpq style connection string accepted by pgxpool.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// HubConfig points at the legacy Woltlab MySQL database.
type HubConfig struct {
	DSN       string
	ChunkSize int
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type MaxMindConfig struct {
	AccountID  string
	LicenseKey string
	Dest       string
}

type FetchConfig struct {
	Concurrency int
	Timeout     time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

var ErrMissingAuthSecret = errors.New("AUTH_SECRET is required")

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "forge")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "forge")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("HUB_DSN", "")
	v.SetDefault("HUB_CHUNK_SIZE", 1000)
	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("AUTH_TOKEN_TTL", "720h")
	v.SetDefault("MAXMIND_ACCOUNT_ID", "")
	v.SetDefault("MAXMIND_LICENSE_KEY", "")
	v.SetDefault("MAXMIND_DEST", "storage/geoip/GeoLite2-City.mmdb")
	v.SetDefault("FETCH_CONCURRENCY", 4)
	v.SetDefault("FETCH_TIMEOUT", "60s")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: duration(v, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Hub: HubConfig{
			DSN:       v.GetString("HUB_DSN"),
			ChunkSize: v.GetInt("HUB_CHUNK_SIZE"),
		},
		Auth: AuthConfig{
			Secret:   v.GetString("AUTH_SECRET"),
			TokenTTL: duration(v, "AUTH_TOKEN_TTL", 30*24*time.Hour),
		},
		MaxMind: MaxMindConfig{
			AccountID:  v.GetString("MAXMIND_ACCOUNT_ID"),
			LicenseKey: v.GetString("MAXMIND_LICENSE_KEY"),
			Dest:       v.GetString("MAXMIND_DEST"),
		},
		Fetch: FetchConfig{
			Concurrency: v.GetInt("FETCH_CONCURRENCY"),
			Timeout:     duration(v, "FETCH_TIMEOUT", time.Minute),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

// RequireAuthSecret fails when no token signing secret is configured. Only
// the API server needs one.
func (c *Config) RequireAuthSecret() error {
	if c.Auth.Secret == "" {
		return ErrMissingAuthSecret
	}
	return nil
}

// duration falls back to def when the value does not parse.
func duration(v *viper.Viper, key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return def
	}
	return d
}
