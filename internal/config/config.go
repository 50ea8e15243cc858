// Package config provides configuration management for go-advice.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var AppVersion = "-unset-" // will be set at build time

const (
	DefaultWebPort    = 11980
	DefaultPageSize   = 10
	DefaultConfigPath = "./advice.yaml"
	DefaultDataDir    = "./data"
	DefaultMinWordLen = 3
	DefaultLogMaxSize = 50 // MB
	DefaultLogBackups = 5
	DefaultLogMaxAge  = 28 // days
)

// AppConfig holds the main configuration for go-advice
type AppConfig struct {
	// Mutex for thread-safe access
	mux sync.Mutex `yaml:"-" json:"-"`

	Web       WebConfig       `yaml:"web" json:"web"`
	Database  DatabaseConfig  `yaml:"database" json:"database"`
	Log       LogConfig       `yaml:"log" json:"log"`
	Search    SearchConfig    `yaml:"search" json:"search"`
	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler"`

	AppVersion string `yaml:"-" json:"app_version"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort     int      `yaml:"listen_port" json:"listen_port" validate:"min=1024,max=65535"`
	SSL            bool     `yaml:"ssl" json:"ssl"`
	CertFile       string   `yaml:"cert_file" json:"cert_file,omitempty" validate:"required_if=SSL true"`
	KeyFile        string   `yaml:"key_file" json:"key_file,omitempty" validate:"required_if=SSL true"`
	PageSize       int      `yaml:"page_size" json:"page_size" validate:"min=1,max=100"`
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies" validate:"dive,cidr|ip"`
	BlockBots      bool     `yaml:"block_bots" json:"block_bots"`
	Debug          bool     `yaml:"debug" json:"debug"` // Enable debug logging for sessions/auth
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DataDir  string `yaml:"data_dir" json:"data_dir" validate:"required"` // Directory for the main database
	WALMode  bool   `yaml:"wal_mode" json:"wal_mode"`
	SyncMode string `yaml:"sync_mode" json:"sync_mode" validate:"oneof=OFF NORMAL FULL"`
}

// LogConfig controls where and how much the service logs
type LogConfig struct {
	Level      string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" json:"format" validate:"oneof=text json"`
	File       string `yaml:"file" json:"file,omitempty"` // empty logs to stderr
	MaxSize    int    `yaml:"max_size_mb" json:"max_size_mb" validate:"min=1"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" validate:"min=0"`
	MaxAge     int    `yaml:"max_age_days" json:"max_age_days" validate:"min=0"`
}

// SearchConfig tunes keyword detection
type SearchConfig struct {
	MinWordLength   int           `yaml:"min_word_length" json:"min_word_length" validate:"min=1,max=32"`
	StopWords       []string      `yaml:"stop_words" json:"stop_words,omitempty"` // extra words never treated as keywords
	PopularLimit    int           `yaml:"popular_limit" json:"popular_limit" validate:"min=0,max=100"`
	PopularCacheTTL time.Duration `yaml:"popular_cache_ttl" json:"popular_cache_ttl" validate:"min=0"` // 0 disables caching
}

// SchedulerConfig holds the cron specs for background jobs
type SchedulerConfig struct {
	Timezone       string `yaml:"timezone" json:"timezone" validate:"required"`
	SessionCleanup string `yaml:"session_cleanup" json:"session_cleanup" validate:"required"`
	KeywordPrune   string `yaml:"keyword_prune" json:"keyword_prune" validate:"required"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *AppConfig {
	cfg := &AppConfig{
		AppVersion: AppVersion,
		Web: WebConfig{
			ListenPort:     DefaultWebPort,
			PageSize:       DefaultPageSize,
			TrustedProxies: []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
			BlockBots:      true,
		},
		Database: DatabaseConfig{
			DataDir:  DefaultDataDir,
			WALMode:  true,
			SyncMode: "NORMAL",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSize:    DefaultLogMaxSize,
			MaxBackups: DefaultLogBackups,
			MaxAge:     DefaultLogMaxAge,
		},
		Search: SearchConfig{
			MinWordLength:   DefaultMinWordLen,
			PopularLimit:    10,
			PopularCacheTTL: time.Minute,
		},
		Scheduler: SchedulerConfig{
			Timezone:       "UTC",
			SessionCleanup: "@every 15m",
			KeywordPrune:   "30 3 * * *",
		},
	}
	return cfg
}

// Load reads a YAML config file on top of the defaults.
// A missing file is not an error: the defaults are used.
func Load(path string) (*AppConfig, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml %s: %w", path, err)
		}
		log.Printf("[CONFIG]: loaded %s", path)
	case os.IsNotExist(err):
		log.Printf("[CONFIG]: %s not found, using defaults", path)
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// GetConfigPath returns the config file path from environment or default.
func GetConfigPath() string {
	if path := os.Getenv("ADVICE_CONFIG"); path != "" {
		return path
	}
	return DefaultConfigPath
}

func (c *AppConfig) applyEnvironmentOverrides() {
	c.mux.Lock()
	defer c.mux.Unlock()
	if dir := os.Getenv("ADVICE_DATA"); dir != "" {
		c.Database.DataDir = dir
	}
	if portEnv := os.Getenv("ADVICE_WEB_PORT"); portEnv != "" {
		if p, err := strconv.Atoi(portEnv); err == nil {
			c.Web.ListenPort = p
		} else {
			log.Printf("[CONFIG]: ignoring ADVICE_WEB_PORT=%q: %v", portEnv, err)
		}
	}
}

// Validate checks the struct tags of the whole configuration
func (c *AppConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Scheduler.Timezone, err)
	}
	return nil
}
