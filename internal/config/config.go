// Package config loads server settings from an optional TOML file, a .env file and the
// process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Store selects the repository backend
type Store string

const (
	StoreMemory   Store = "memory"
	StoreSQLite   Store = "sqlite"
	StorePostgres Store = "postgres"
)

// Database holds the postgres connection settings
type Database struct {
	ConnString string `toml:"ConnString"` // Takes precedence over the individual fields
	Host       string `toml:"Host"`
	Port       string `toml:"Port"`
	User       string `toml:"User"`
	Password   string `toml:"Password"`
	Name       string `toml:"Name"`
}

// Config is the server configuration
type Config struct {
	Env          string   `toml:"Env"`
	GRPCAddr     string   `toml:"GRPCAddr"`
	HTTPAddr     string   `toml:"HTTPAddr"`
	APIToken     string   `toml:"APIToken"`
	Store        Store    `toml:"Store"`
	SQLitePath   string   `toml:"SQLitePath"`
	SeedFile     string   `toml:"SeedFile"`
	LogLevel     string   `toml:"LogLevel"`
	LogFile      string   `toml:"LogFile"`
	RateLimitRPS float64  `toml:"RateLimitRPS"`
	RateBurst    int      `toml:"RateBurst"`
	CORSOrigins  []string `toml:"CORSOrigins"`
	Database     Database `toml:"Database"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Env:          "development",
		GRPCAddr:     ":8080",
		HTTPAddr:     ":8081",
		APIToken:     "dev-token",
		Store:        StoreMemory,
		SQLitePath:   "rewardnetwork.db",
		LogLevel:     "info",
		RateLimitRPS: 50,
		RateBurst:    100,
		CORSOrigins:  []string{"*"},
		Database: Database{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "rewardnetwork",
		},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			slog.Warn("ignoring unknown config keys", slog.Any("keys", undecoded))
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Env, "ENV")
	setString(&cfg.GRPCAddr, "GRPC_ADDR")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.APIToken, "API_TOKEN")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.SeedFile, "SEED_FILE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFile, "LOG_FILE")
	setString(&cfg.Database.ConnString, "DB_CONN_STR")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")

	if v, ok := lookup("STORE"); ok {
		cfg.Store = Store(strings.ToLower(v))
	}
	if v, ok := lookup("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = strings.Split(v, ",")
		for i := range cfg.CORSOrigins {
			cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
		}
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		cfg.RateLimitRPS = rps
	}
	if v, ok := lookup("RATE_BURST"); ok {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_BURST %q: %w", v, err)
		}
		cfg.RateBurst = burst
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

// Validate checks that the settings are usable
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("store must be memory, sqlite, or postgres, got %q", c.Store)
	}
	if c.GRPCAddr == "" && c.HTTPAddr == "" {
		return errors.New("at least one of GRPCAddr and HTTPAddr must be set")
	}
	if c.Store == StoreSQLite && c.SQLitePath == "" {
		return errors.New("SQLitePath is required for the sqlite store")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RateLimitRPS cannot be negative, got %v", c.RateLimitRPS)
	}
	return nil
}

// PostgresDSN returns the lib/pq connection string
func (c *Config) PostgresDSN() string {
	if c.Database.ConnString != "" {
		return c.Database.ConnString
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name)
}
