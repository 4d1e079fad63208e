package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Fixed defaults used when neither the config file nor the environment
// provides a value. The channel default matches the deployment this bot
// historically broadcast to.
const (
	DefaultCity    = "Amman"
	DefaultCountry = "Jordan"
	DefaultMethod  = "2" // ISNA
	DefaultChannel = "1062755334223052931"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Location LocationConfig `json:"location"`
	Logging  LoggingConfig  `json:"logging"`
	// Timezone is the IANA zone for the cron schedules (midnight refresh,
	// per-minute matcher). The matcher compares prayer times against the
	// process-local wall clock, so when set it should match the host
	// timezone; otherwise "midnight" differs between refresh and prune.
	Timezone string `json:"timezone,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// Channel is the broadcast chat id (stringly typed: it arrives from the
	// environment and the config file alike).
	Channel string `json:"channel"`
	// LogChat, when set, receives WARN+ log lines.
	LogChat string `json:"log_chat,omitempty"`
	// PollTimeout is a Go duration string (e.g. "10s").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LocationConfig struct {
	City    string `json:"city"`
	Country string `json:"country"`
	// Method is the calculation method id, passed through to the upstream API.
	Method string `json:"method"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
	Chat    LoggingChat `json:"chat"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingChat struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

func defaults() *Config {
	return &Config{
		Telegram: TelegramConfig{Channel: DefaultChannel},
		Location: LocationConfig{City: DefaultCity, Country: DefaultCountry, Method: DefaultMethod},
		Logging:  LoggingConfig{Level: "info", Console: true},
	}
}

// applyEnv overlays environment values on top of file/default values.
// Environment wins: the systemd unit sets these, the file is optional.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("BOT_TOKEN"); ok {
		cfg.Telegram.Token = v
	}
	if v, ok := os.LookupEnv("CHANNEL_ID"); ok {
		cfg.Telegram.Channel = v
	}
	if v, ok := os.LookupEnv("LOG_CHAT_ID"); ok {
		cfg.Telegram.LogChat = v
	}
	if v, ok := os.LookupEnv("CITY"); ok {
		cfg.Location.City = v
	}
	if v, ok := os.LookupEnv("COUNTRY"); ok {
		cfg.Location.Country = v
	}
	if v, ok := os.LookupEnv("CALCULATION_METHOD"); ok {
		cfg.Location.Method = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
}

var ErrMissingToken = errors.New("missing bot token: set BOT_TOKEN or telegram.token")

// Validate rejects configs the bot cannot start (or hot-reload) with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrMissingToken
	}
	if _, err := ParseChatID(c.Telegram.Channel); err != nil {
		return fmt.Errorf("telegram.channel: %w", err)
	}
	if lc := strings.TrimSpace(c.Telegram.LogChat); lc != "" {
		if _, err := ParseChatID(lc); err != nil {
			return fmt.Errorf("telegram.log_chat: %w", err)
		}
	}
	if strings.TrimSpace(c.Location.City) == "" {
		return errors.New("location.city must not be empty")
	}
	if strings.TrimSpace(c.Location.Country) == "" {
		return errors.New("location.country must not be empty")
	}
	m := strings.TrimSpace(c.Location.Method)
	if n, err := strconv.Atoi(m); err != nil || n <= 0 {
		return fmt.Errorf("location.method: %q is not a positive integer", c.Location.Method)
	}
	if c.Telegram.PollTimeout != "" {
		if _, err := parseDuration(c.Telegram.PollTimeout); err != nil {
			return fmt.Errorf("telegram.poll_timeout: %w", err)
		}
	}
	return nil
}

// ParseChatID parses a chat identifier string into the numeric id Telegram
// wants. The identifier is treated as opaque everywhere else.
func ParseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q", s)
	}
	return id, nil
}

func decodeStrict(jb []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("invalid config: trailing data")
		}
		return err
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// PollTimeoutOrDefault resolves the adapter poll timeout.
func (c *Config) PollTimeoutOrDefault(def time.Duration) time.Duration {
	if c.Telegram.PollTimeout == "" {
		return def
	}
	d, err := parseDuration(c.Telegram.PollTimeout)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
