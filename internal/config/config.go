package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds point store cache settings.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// IntervalsConfig holds per-engine tick cadences.
type IntervalsConfig struct {
	Alarms   time.Duration `yaml:"alarms"`
	Control  time.Duration `yaml:"control"`
	Rate     time.Duration `yaml:"rate"`
	Triggers time.Duration `yaml:"triggers"`
}

// UnmarshalYAML decodes interval durations written as strings like "500ms"
// or "10s". Absent fields keep their prior value.
func (c *IntervalsConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Alarms   string `yaml:"alarms"`
		Control  string `yaml:"control"`
		Rate     string `yaml:"rate"`
		Triggers string `yaml:"triggers"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	for _, field := range []struct {
		dst *time.Duration
		src string
	}{
		{&c.Alarms, raw.Alarms},
		{&c.Control, raw.Control},
		{&c.Rate, raw.Rate},
		{&c.Triggers, raw.Triggers},
	} {
		if field.src == "" {
			continue
		}
		parsed, err := time.ParseDuration(field.src)
		if err != nil {
			return err
		}
		*field.dst = parsed
	}
	return nil
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the service configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Intervals IntervalsConfig `yaml:"intervals"`
	Log       LogConfig       `yaml:"log"`
	Timezone  string          `yaml:"timezone"`
	HTTPAddr  string          `yaml:"http_addr"`
}

// Load reads configuration from yaml (path in MONITOR_CONFIG) with env overrides.
func Load() (Config, error) {
	cfg := Config{
		Redis: RedisConfig{
			Addr:      getenvDefault("REDIS_ADDR", "localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        getenvIntDefault("REDIS_DB", 0),
			KeyPrefix: getenvDefault("POINTS_KEY_PREFIX", "monitoring:point:"),
		},
		Intervals: IntervalsConfig{
			Alarms:   time.Second,
			Control:  time.Second,
			Rate:     time.Second,
			Triggers: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  getenvDefault("LOG_LEVEL", "info"),
			Format: getenvDefault("LOG_FORMAT", "json"),
		},
		Timezone: getenvDefault("MONITOR_TZ", "Local"),
		HTTPAddr: getenvDefault("HTTP_ADDR", ":9108"),
	}

	if path := os.Getenv("MONITOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Database.URL == "" {
		return cfg, errors.New("config: database url required")
	}
	if cfg.Intervals.Alarms <= 0 {
		cfg.Intervals.Alarms = time.Second
	}
	if cfg.Intervals.Control <= 0 {
		cfg.Intervals.Control = time.Second
	}
	if cfg.Intervals.Rate <= 0 {
		cfg.Intervals.Rate = time.Second
	}
	if cfg.Intervals.Triggers <= 0 {
		cfg.Intervals.Triggers = 10 * time.Second
	}
	return cfg, nil
}

// Location resolves the configured time zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntDefault(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
