package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore, e.g. SIMPLEREMINDER_SCHEDULER__EXACT_ALARMS.
const EnvPrefix = "SIMPLEREMINDER_"

type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Scheduler    SchedulerConfig    `koanf:"scheduler"`
	Notification NotificationConfig `koanf:"notification"`
	Line         LineConfig         `koanf:"line"`
	Log          LogConfig          `koanf:"log"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type DatabaseConfig struct {
	Path     string `koanf:"path"`
	LogLevel string `koanf:"log_level"` // silent, error, warn, info
}

type SchedulerConfig struct {
	ExactAlarms       bool `koanf:"exact_alarms"`       // false forces the inexact fallback
	InexactWindow     int  `koanf:"inexact_window"`     // seconds
	DeliveryTimeout   int  `koanf:"delivery_timeout"`   // seconds
	ReconcileInterval int  `koanf:"reconcile_interval"` // seconds, 0 = off
}

type NotificationConfig struct {
	ShowDueTime ShowDueTimeConfig `koanf:"show_due_time"`
}

// ShowDueTimeConfig selects on which alerts the original due time is displayed.
type ShowDueTimeConfig struct {
	Notify bool `koanf:"notify"`
	Nag    bool `koanf:"nag"`
	Reshow bool `koanf:"reshow"`
}

type LineConfig struct {
	ChannelSecret string `koanf:"channel_secret"`
	ChannelToken  string `koanf:"channel_token"`
	RecipientID   string `koanf:"recipient_id"`
	EndpointBase  string `koanf:"endpoint_base"` // override of the LINE API base URL
}

type LogConfig struct {
	Debug bool `koanf:"debug"`
}

// legacyEnv maps the plain variable names of earlier deployments to config keys.
var legacyEnv = map[string]string{
	"PORT":                 "server.port",
	"BLUEPRINT_DB_URL":     "database.path",
	"CHANNEL_SECRET":       "line.channel_secret",
	"CHANNEL_ACCESS_TOKEN": "line.channel_token",
	"LINE_RECIPIENT_ID":    "line.recipient_id",
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	for name, key := range legacyEnv {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if key == "server.port" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q: %w", name, v, err)
			}
			k.Set(key, port)
			continue
		}
		k.Set(key, v)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required (set BLUEPRINT_DB_URL or database.path)")
	}

	if c.Scheduler.InexactWindow <= 0 {
		return fmt.Errorf("inexact_window must be positive")
	}

	if c.Scheduler.DeliveryTimeout <= 0 {
		return fmt.Errorf("delivery_timeout must be positive")
	}

	if c.Scheduler.ReconcileInterval < 0 {
		return fmt.Errorf("reconcile_interval must not be negative")
	}

	// LINE is optional, but half a credential pair is a mistake
	if (c.Line.ChannelSecret == "") != (c.Line.ChannelToken == "") {
		return fmt.Errorf("CHANNEL_SECRET and CHANNEL_ACCESS_TOKEN must be set together")
	}
	if c.LineEnabled() && c.Line.RecipientID == "" {
		return fmt.Errorf("LINE recipient id is required when LINE is configured (set LINE_RECIPIENT_ID)")
	}

	return nil
}

// LineEnabled reports whether LINE credentials are configured.
func (c *Config) LineEnabled() bool {
	return c.Line.ChannelSecret != "" && c.Line.ChannelToken != ""
}

func (s SchedulerConfig) InexactWindowDuration() time.Duration {
	return time.Duration(s.InexactWindow) * time.Second
}

func (s SchedulerConfig) DeliveryTimeoutDuration() time.Duration {
	return time.Duration(s.DeliveryTimeout) * time.Second
}

func (s SchedulerConfig) ReconcileIntervalDuration() time.Duration {
	return time.Duration(s.ReconcileInterval) * time.Second
}
