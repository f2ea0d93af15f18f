package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// EnvPrefix prefixes every environment override, e.g. TIMETRACKER_HTTP_ADDR.
const EnvPrefix = "TIMETRACKER"

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Store     StoreConfig     `mapstructure:"store"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

type SchedulerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Schedule     string        `mapstructure:"schedule"`
	Timezone     string        `mapstructure:"timezone"`
	QueueSize    int           `mapstructure:"queue_size"`
	SweepTimeout time.Duration `mapstructure:"sweep_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func New() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: time.Second * 10,
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
			DSN:     "timetracker.db",
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			Schedule:     "0 59 23 * * *",
			Timezone:     "Local",
			QueueSize:    1,
			SweepTimeout: time.Minute * 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every key with its default so that environment
// variables are picked up by Unmarshal even without a config file.
func SetDefaults(v *viper.Viper) {
	d := New()

	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.shutdown_timeout", d.HTTP.ShutdownTimeout)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("scheduler.enabled", d.Scheduler.Enabled)
	v.SetDefault("scheduler.schedule", d.Scheduler.Schedule)
	v.SetDefault("scheduler.timezone", d.Scheduler.Timezone)
	v.SetDefault("scheduler.queue_size", d.Scheduler.QueueSize)
	v.SetDefault("scheduler.sweep_timeout", d.Scheduler.SweepTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must be positive"))
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite, BackendPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for backend %q", c.Store.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not one of memory, sqlite, postgres", c.Store.Backend))
	}

	if c.Scheduler.Enabled {
		if _, err := c.Scheduler.Location(); err != nil {
			errs = append(errs, err)
		}
		if c.Scheduler.QueueSize <= 0 {
			errs = append(errs, errors.New("scheduler.queue_size must be positive"))
		}
		if c.Scheduler.SweepTimeout < 0 {
			errs = append(errs, errors.New("scheduler.sweep_timeout must not be negative"))
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Location resolves the scheduler time zone; "" and "Local" mean the host zone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler.timezone: %w", err)
	}
	return loc, nil
}
