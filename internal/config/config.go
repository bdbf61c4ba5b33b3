// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading. Values are
// layered: struct defaults, then an optional YAML file, then environment
// variables. It provides a centralized Config struct used across the
// application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"medaudio/internal/cache"
	"medaudio/internal/database"
)

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/medaudio/config.yaml",
}

const defaultDBPassword = "changeme"

// Config holds all application configuration values.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Database DatabaseConfig `koanf:"database"`
	Valkey   ValkeyConfig   `koanf:"valkey"`
	Cache    cache.Config   `koanf:"cache"`
	Admin    AdminConfig    `koanf:"admin"`
	HTTP     HTTPConfig     `koanf:"http"`
	Jobs     JobsConfig     `koanf:"jobs"`
}

// AppConfig holds server settings.
type AppConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Env      string `koanf:"env"` // "development", "production", "testing"
	LogLevel string `koanf:"log_level"`
}

// DatabaseConfig holds the PostgreSQL connection.
type DatabaseConfig struct {
	Host     string              `koanf:"host"`
	Port     string              `koanf:"port"`
	User     string              `koanf:"user"`
	Password string              `koanf:"password"`
	Name     string              `koanf:"name"`
	SSLMode  string              `koanf:"sslmode"`
	Pool     database.PoolConfig `koanf:"pool"`
	Seed     bool                `koanf:"seed"`
}

// ValkeyConfig holds the Valkey (Redis-compatible) connection used for
// cross-instance cache invalidation. An empty host disables it.
type ValkeyConfig struct {
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// AdminConfig guards the admin API. KeyHash is a bcrypt hash of the bearer key.
type AdminConfig struct {
	KeyHash string `koanf:"key_hash"`
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit"`
	RateWindow      time.Duration `koanf:"rate_window"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// JobsConfig holds the intervals of the background jobs.
type JobsConfig struct {
	CacheCleanup     time.Duration `koanf:"cache_cleanup"`
	CompatReport     time.Duration `koanf:"compat_report"`
	CompatReportSize int           `koanf:"compat_report_size"`
}

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			Host:     "0.0.0.0",
			Port:     "8080",
			Env:      "development",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "medaudio",
			Password: defaultDBPassword,
			Name:     "medaudio",
			SSLMode:  "disable",
			Pool:     database.PoolConfig{MaxConns: 10, MaxConnLifetime: time.Hour},
		},
		Valkey: ValkeyConfig{
			Host: "localhost",
			Port: "6379",
		},
		Cache: cache.DefaultConfig(),
		HTTP: HTTPConfig{
			CORSOrigins:     []string{"*"},
			RateLimit:       60,
			RateWindow:      time.Minute,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Jobs: JobsConfig{
			CacheCleanup:     5 * time.Minute,
			CompatReport:     time.Hour,
			CompatReportSize: 500,
		},
	}
}

// envMappings maps environment variable names to config paths. Unmapped
// variables are ignored.
var envMappings = map[string]string{
	"app_host":      "app.host",
	"app_port":      "app.port",
	"app_env":       "app.env",
	"app_log_level": "app.log_level",

	"postgres_host":              "database.host",
	"postgres_port":              "database.port",
	"postgres_user":              "database.user",
	"postgres_password":          "database.password",
	"postgres_db":                "database.name",
	"postgres_sslmode":           "database.sslmode",
	"postgres_max_conns":         "database.pool.max_conns",
	"postgres_min_conns":         "database.pool.min_conns",
	"postgres_max_conn_lifetime": "database.pool.max_conn_lifetime",
	"db_seed":                    "database.seed",

	"valkey_host":     "valkey.host",
	"valkey_port":     "valkey.port",
	"valkey_password": "valkey.password",
	"valkey_db":       "valkey.db",

	"cache_list_capacity":   "cache.list.capacity",
	"cache_list_ttl":        "cache.list.ttl",
	"cache_tree_capacity":   "cache.tree.capacity",
	"cache_tree_ttl":        "cache.tree.ttl",
	"cache_stats_capacity":  "cache.stats.capacity",
	"cache_stats_ttl":       "cache.stats.ttl",
	"cache_single_capacity": "cache.single.capacity",
	"cache_single_ttl":      "cache.single.ttl",
	"cache_stats_delay":     "cache.stats_delay",

	"admin_key_hash": "admin.key_hash",

	"cors_origins":          "http.cors_origins",
	"rate_limit":            "http.rate_limit",
	"rate_window":           "http.rate_window",
	"http_read_timeout":     "http.read_timeout",
	"http_write_timeout":    "http.write_timeout",
	"http_shutdown_timeout": "http.shutdown_timeout",

	"job_cache_cleanup":      "jobs.cache_cleanup",
	"job_compat_report":      "jobs.compat_report",
	"job_compat_report_size": "jobs.compat_report_size",
}

// sliceConfigPaths are parsed as comma-separated lists when set from the
// environment.
var sliceConfigPaths = []string{"http.cors_origins"}

func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load reads configuration from defaults, the config file and environment
// variables. In development a .env file in the working directory is loaded
// first. Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if env := os.Getenv("APP_ENV"); env == "" || env == "development" {
		if err := godotenv.Load(); err == nil {
			slog.Debug("loaded .env file")
		}
	}
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitSlices(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.App.Env {
	case "development", "production", "testing":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be development, production or testing, got %q", c.App.Env))
	}
	if c.App.Port == "" {
		errs = append(errs, errors.New("APP_PORT must not be empty"))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT must not be negative"))
	}
	if c.App.Env == "production" {
		if c.Database.Password == defaultDBPassword {
			errs = append(errs, errors.New("POSTGRES_PASSWORD must be set in production"))
		}
		if c.Admin.KeyHash == "" {
			errs = append(errs, errors.New("ADMIN_KEY_HASH must be set in production"))
		}
	}
	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.App.Host, c.App.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.App.Env == "development"
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
