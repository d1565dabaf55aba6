// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port    int `yaml:"port"`
	Workers int `yaml:"workers"` // background task workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	DefaultModel    string `yaml:"default_model"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls
}

type ChatConfig struct {
	FollowUpDelay  time.Duration `yaml:"follow_up_delay"`  // mood follow-up message delay
	SessionIdleTTL time.Duration `yaml:"session_idle_ttl"` // evict in-memory sessions idle this long
	HandoffTTL     time.Duration `yaml:"handoff_ttl"`      // resume hand-off slot lifetime
	HistoryWindow  int           `yaml:"history_window"`   // recent messages forwarded to the assistant
}

type SpeechConfig struct {
	Timeout time.Duration `yaml:"timeout"` // max capture duration
}

type SecurityConfig struct {
	EncryptionKey   string        `yaml:"encryption_key"`
	EncryptMessages bool          `yaml:"encrypt_messages"`
	JWTSecret       string        `yaml:"jwt_secret"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Chat     ChatConfig     `yaml:"chat"`
	Speech   SpeechConfig   `yaml:"speech"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Workers <= 0 {
		cfg.Server.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Chat.FollowUpDelay <= 0 {
		cfg.Chat.FollowUpDelay = time.Second
	}
	if cfg.Chat.SessionIdleTTL <= 0 {
		cfg.Chat.SessionIdleTTL = 30 * time.Minute
	}
	if cfg.Chat.HandoffTTL <= 0 {
		cfg.Chat.HandoffTTL = 10 * time.Minute
	}
	if cfg.Chat.HistoryWindow <= 0 {
		cfg.Chat.HistoryWindow = 5
	}
	if cfg.Speech.Timeout <= 0 {
		cfg.Speech.Timeout = 30 * time.Second
	}
	if cfg.Security.SessionTTL <= 0 {
		cfg.Security.SessionTTL = 24 * time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Security.JWTSecret == "" {
		return nil, errors.New("security.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
