package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/batch"
	"github.com/fwojciec/revise/gemini"
	revisehttp "github.com/fwojciec/revise/http"
	revredis "github.com/fwojciec/revise/redis"
	"gopkg.in/yaml.v3"
)

// Progress store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds every setting of the program. It is read from an optional
// YAML file; flags and environment variables override it.
type Config struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name"`

	// Credentials is a service account key file. SheetsAPIKey only
	// allows reads.
	Credentials  string `yaml:"credentials"`
	SheetsAPIKey string `yaml:"sheets_api_key"`

	GeminiAPIKey string  `yaml:"gemini_api_key"`
	Model        string  `yaml:"model"`
	RateLimit    float64 `yaml:"rate_limit"`

	Store       string `yaml:"store"`
	DBPath      string `yaml:"db_path"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`

	Limit            int           `yaml:"limit"`
	Delay            time.Duration `yaml:"delay"`
	MaxContentLength int           `yaml:"max_content_length"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	Browser          bool          `yaml:"browser"`
	Timezone         string        `yaml:"timezone"`
	FallbackDir      string        `yaml:"fallback_dir"`

	Addr string `yaml:"addr"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		Model:            gemini.DefaultModel,
		Store:            StoreSQLite,
		DBPath:           defaultDBPath(),
		RedisPrefix:      revredis.DefaultPrefix,
		Limit:            revise.DefaultLimit,
		Delay:            batch.DefaultDelay,
		MaxContentLength: revise.MaxContentLength,
		FetchTimeout:     revisehttp.DefaultFetchTimeout,
		Timezone:         "Asia/Tokyo",
		FallbackDir:      "logs",
		Addr:             ":8080",
	}
}

// LoadConfigFile reads path over DefaultConfig.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that are wrong regardless of the command.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return revise.Errorf(revise.EINVALID, "db_path is required for the sqlite store")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return revise.Errorf(revise.EINVALID, "redis_url is required for the redis store")
		}
	default:
		return revise.Errorf(revise.EINVALID, "unsupported store %q (use sqlite or redis)", c.Store)
	}
	if c.Limit < 0 {
		return revise.Errorf(revise.EINVALID, "limit must not be negative")
	}
	if c.Delay < 0 {
		return revise.Errorf(revise.EINVALID, "delay must not be negative")
	}
	if c.MaxContentLength < 0 {
		return revise.Errorf(revise.EINVALID, "max_content_length must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, revise.Errorf(revise.EINVALID, "unknown timezone %q", c.Timezone)
	}
	return loc, nil
}

// RequireSheet reports a missing spreadsheet setting.
func (c *Config) RequireSheet() error {
	if c.SpreadsheetID == "" {
		return revise.Errorf(revise.EINVALID, "spreadsheet ID not set (--spreadsheet-id or SPREADSHEET_ID)")
	}
	if c.SheetName == "" {
		return revise.Errorf(revise.EINVALID, "sheet name not set (--sheet-name or SHEET_NAME)")
	}
	return nil
}

func defaultDBPath() string {
	if path := os.Getenv("REVISE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "revise.db"
	}
	dir := filepath.Join(home, ".revise")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "revise.db")
}
