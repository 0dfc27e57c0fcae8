package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "db.internal"
port = 5433
user = "gym"
password = "secret"
dbname = "gym_classes"
sslmode = "require"

[logs]
file = "logs/gym.log"
level = "debug"

[metrics]
enabled = true
service_name = "gym-class-service"

[notifier]
enabled = true
addr = "redis.internal:6379"
channel = "gym:events"

[booking]
timezone = "Asia/Jerusalem"
cancel_window_hours = 6.0
switch_window_hours = 1.0
late_cancel_limit = 3
block_days = 3
schedule_window_days = 14
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "host=db.internal port=5433 user=gym password=secret dbname=gym_classes sslmode=require", cfg.Database.DSN())
	assert.Equal(t, "debug", cfg.Logs.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.True(t, cfg.Notifier.Enabled)
	assert.Equal(t, "Asia/Jerusalem", cfg.Booking.Timezone)
	assert.Equal(t, 14, cfg.Booking.ScheduleWindowDays)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
[database]
user = "gym"
dbname = "gym_classes"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, float64(6), cfg.Booking.CancelWindowHours)
	assert.Equal(t, float64(1), cfg.Booking.SwitchWindowHours)
	assert.Equal(t, 3, cfg.Booking.LateCancelLimit)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Notifier.Enabled)
}

func TestLoad_MissingDatabaseCredentials(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 8080
`)

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoad_InvalidPolicyValues(t *testing.T) {
	path := writeConfig(t, `
[database]
user = "gym"
dbname = "gym_classes"

[booking]
late_cancel_limit = -1
`)

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))

	assert.Error(t, err)
}
