package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracker/internal/domain"
	"timetracker/internal/store/sqlstore"
	"timetracker/internal/store/sqlstore/driver"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dsn string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "timetracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: sqlite\n  dsn: "+dsn+"\nlog:\n  level: error\n"), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "timetracker dev\n", out)
}

func TestMigrate_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tt.db")
	cfg := writeConfig(t, dsn)

	out, err := run(t, "--config", cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema up to date")

	_, err = os.Stat(dsn)
	assert.NoError(t, err)
}

func TestMigrate_MemoryRejected(t *testing.T) {
	_, err := run(t, "--store", "memory", "migrate")
	assert.Error(t, err)
}

func TestSweep_ClosesInProgressTasks(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tt.db")
	ctx := context.Background()

	s, err := sqlstore.Open(driver.DialectSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))

	running, err := s.Create(ctx, domain.Task{TaskName: "left on", Status: domain.StatusInProgress})
	require.NoError(t, err)
	idle, err := s.Create(ctx, domain.Task{TaskName: "idle", Status: domain.StatusCreated})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err := run(t, "--log-level", "error", "--dsn", dsn, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "closed 1 task(s)")

	s, err = sqlstore.Open(driver.DialectSQLite, dsn)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClose, got.Status)

	got, err = s.Get(ctx, idle.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCreated, got.Status)
}

func TestBadConfigFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.Error(t, err)
}
