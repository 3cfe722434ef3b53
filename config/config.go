package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// CalDAVConfig holds credentials for the optional one-way calendar push.
type CalDAVConfig struct {
	URL          string `yaml:"url"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	CalendarPath string `yaml:"calendar_path"`
}

// Config is the top-level application configuration, loaded from a
// YAML file. The Telegram token and chat may also come from the
// environment so the file can be committed without secrets.
type Config struct {
	// TelegramToken authenticates the bot. Env TELEGRAM_BOT_TOKEN wins.
	TelegramToken string `yaml:"telegram_token"`

	// ChatID is the owner's Telegram chat. Env KIZUNA_CHAT_ID wins.
	ChatID int64 `yaml:"chat_id"`

	// DatabasePath is the sqlite file location.
	DatabasePath string `yaml:"database_path"`

	// Timezone is the IANA zone used for all calendar math.
	Timezone string `yaml:"timezone"`

	// WeekStart controls the first column of the month grid:
	// "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start"`

	// DigestTime is the HH:MM of the morning digest.
	DigestTime string `yaml:"digest_time"`

	// CalDAV, if filled in, enables the external calendar push.
	CalDAV CalDAVConfig `yaml:"caldav"`

	location *time.Location
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath: "./data/kizuna.db",
		Timezone:     "Asia/Tokyo",
		WeekStart:    "monday",
		DigestTime:   "09:00",
	}
}

// Normalize fills missing values with defaults and resolves the
// timezone. Unknown week_start values fall back to monday to avoid
// surprising grid layouts.
func (c *Config) Normalize() error {
	if c.DatabasePath == "" {
		c.DatabasePath = "./data/kizuna.db"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Tokyo"
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "monday"
	}
	if c.DigestTime == "" {
		c.DigestTime = "09:00"
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location returns the resolved timezone
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// WeekStartDay maps the configured week start to a weekday
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// Load reads the YAML config, creating a default file on first run,
// then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		if err := save(path, cfg); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chat := os.Getenv("KIZUNA_CHAT_ID"); chat != "" {
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid KIZUNA_CHAT_ID: %w", err)
		}
		cfg.ChatID = id
	}

	if cfg.TelegramToken == "" {
		return nil, errors.New("telegram token is required (config or TELEGRAM_BOT_TOKEN)")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("chat id is required (config or KIZUNA_CHAT_ID)")
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
