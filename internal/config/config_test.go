package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Empty(t, cfg.DB.DSN)
	assert.Equal(t, "*/5 * * * *", cfg.Scheduler.RemindersCron)
	assert.Equal(t, "*/5 * * * *", cfg.Scheduler.MissedDoseCron)
	assert.Equal(t, "0 9 * * *", cfg.Scheduler.LowStockCron)
	assert.Equal(t, 2*time.Minute, cfg.Scheduler.SweepTimeout)
	assert.Equal(t, DriverNone, cfg.Notify.Driver)
	assert.True(t, cfg.Scheduler.Enabled)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pilltrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
log:
  level: debug
scheduler:
  low_stock_cron: "30 8 * * *"
  sweep_timeout: 45s
notify:
  driver: kafka
  kafka_brokers: ["k1:9092"]
tz_name: America/Argentina/Buenos_Aires
`), 0o600))

	cfg, err := load(path, envOf(map[string]string{
		"PORT":              "7000",
		"KAFKA_BROKERS":     "a:9092, b:9092",
		"SCHEDULER_ENABLED": "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr, "env wins over file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "30 8 * * *", cfg.Scheduler.LowStockCron)
	assert.Equal(t, "*/5 * * * *", cfg.Scheduler.RemindersCron, "defaults kept")
	assert.Equal(t, 45*time.Second, cfg.Scheduler.SweepTimeout)
	assert.Equal(t, DriverKafka, cfg.Notify.Driver)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Notify.KafkaBrokers)
	assert.False(t, cfg.Scheduler.Enabled)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Argentina/Buenos_Aires", loc.String())
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := load("", envOf(map[string]string{"SWEEP_TIMEOUT": "soon"}))
	assert.ErrorContains(t, err, "SWEEP_TIMEOUT")

	_, err = load("", envOf(map[string]string{"SCHEDULER_ENABLED": "maybe"}))
	assert.ErrorContains(t, err, "SCHEDULER_ENABLED")

	_, err = load("", envOf(map[string]string{"NOTIFY_DRIVER": "webhook"}))
	assert.ErrorContains(t, err, "webhook_url")

	_, err = load("", envOf(map[string]string{"NOTIFY_DRIVER": "carrier-pigeon"}))
	assert.ErrorContains(t, err, "unknown notify driver")

	_, err = load("", envOf(map[string]string{"TZ_NAME": "Mars/Olympus"}))
	assert.Error(t, err)

	_, err = load(filepath.Join(t.TempDir(), "missing.yaml"), envOf(nil))
	assert.ErrorContains(t, err, "read config file")
}
