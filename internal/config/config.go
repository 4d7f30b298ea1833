package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port       string `yaml:"port"`
		AdminToken string `yaml:"admin_token"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Sheets struct {
		Path string `yaml:"path"`
	} `yaml:"sheets"`
	Quiz struct {
		Topics       []string `yaml:"topics"`
		Levels       []string `yaml:"levels"`
		BatchSize    int      `yaml:"batch_size"`
		MinQuestions int      `yaml:"min_questions"`
		TTL          string   `yaml:"ttl"`
		PartitionTTL string   `yaml:"partition_ttl"`
		LockTTL      string   `yaml:"lock_ttl"`
	} `yaml:"quiz"`
	RateLimit struct {
		Window string `yaml:"window"`
		Max    int    `yaml:"max"`
	} `yaml:"rate_limit"`
	Leaderboard struct {
		DefaultMode string `yaml:"default_mode"`
		Limit       int    `yaml:"limit"`
	} `yaml:"leaderboard"`
}

// Load reads YAML config from path. A missing file yields an empty Config so that
// defaults and environment overrides still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv loads a .env file from the working directory when present.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	override(&c.Server.Port, "PORT")
	override(&c.Server.AdminToken, "ADMIN_TOKEN")
	override(&c.Redis.Addr, "REDIS_ADDR")
	override(&c.Postgres.URL, "POSTGRES_URL")
	override(&c.Sheets.Path, "SHEETS_PATH")
}

func override(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
