package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, New(), cfg)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
  shutdown_timeout: 3s
store:
  backend: postgres
  dsn: postgres://tt:tt@localhost:5432/tt
scheduler:
  timezone: UTC
  sweep_timeout: 30s
log:
  format: json
`), 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres://tt:tt@localhost:5432/tt", cfg.Store.DSN)
	assert.Equal(t, "UTC", cfg.Scheduler.Timezone)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.SweepTimeout)
	assert.Equal(t, "0 59 23 * * *", cfg.Scheduler.Schedule)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TIMETRACKER_STORE_BACKEND", "memory")
	t.Setenv("TIMETRACKER_HTTP_ADDR", ":7070")
	t.Setenv("TIMETRACKER_SCHEDULER_ENABLED", "false")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"memory without dsn", func(c *Config) { c.Store.Backend = BackendMemory; c.Store.DSN = "" }, ""},
		{"unknown backend", func(c *Config) { c.Store.Backend = "mysql" }, "store.backend"},
		{"sqlite without dsn", func(c *Config) { c.Store.DSN = "" }, "store.dsn"},
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }, "http.addr"},
		{"zero shutdown", func(c *Config) { c.HTTP.ShutdownTimeout = 0 }, "http.shutdown_timeout"},
		{"bad timezone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, "scheduler.timezone"},
		{"bad timezone ignored when disabled", func(c *Config) {
			c.Scheduler.Enabled = false
			c.Scheduler.Timezone = "Mars/Olympus"
		}, ""},
		{"zero queue", func(c *Config) { c.Scheduler.QueueSize = 0 }, "scheduler.queue_size"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchedulerLocation(t *testing.T) {
	loc, err := SchedulerConfig{Timezone: "Local"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = SchedulerConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
