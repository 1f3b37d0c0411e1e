package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pilltrack/internal/config"
	"pilltrack/internal/jobs"
	"pilltrack/internal/platform/logger"
	"pilltrack/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InMemoryDefaults(t *testing.T) {
	a, err := New(context.Background(), config.Default(), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{jobs.NameLowStock, jobs.NameMissedDoses, jobs.NameReminders}, a.scheduler.Names())

	ts := httptest.NewServer(a.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNew_WarnsInDevAuthMode(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Warn, Format: logger.FormatJSON, Output: &buf})

	a, err := New(context.Background(), config.Default(), log)
	require.NoError(t, err)
	defer a.Close()

	assert.Contains(t, buf.String(), "dev auth mode")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), "X-Debug-Roles")

	buf.Reset()
	cfg := config.Default()
	cfg.Auth.JWTSecret = "s3cret"
	b, err := New(context.Background(), cfg, log)
	require.NoError(t, err)
	defer b.Close()

	assert.NotContains(t, buf.String(), "dev auth mode")
	assert.NotNil(t, b.verifier)
}

func TestRunSweep_EmptyStores(t *testing.T) {
	cfg := config.Default()
	cfg.Scheduler.Enabled = false

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	for _, name := range []string{jobs.NameReminders, jobs.NameMissedDoses, jobs.NameLowStock} {
		sum, err := a.RunSweep(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, name, sum.Sweep)
		assert.Empty(t, sum.Items)
	}

	_, err = a.RunSweep(context.Background(), "nope")
	assert.ErrorIs(t, err, scheduler.ErrUnknownSweep)
}

func TestNew_WebhookDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Notify.Driver = config.DriverWebhook
	cfg.Notify.WebhookURL = "http://localhost:9/hooks"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Notify.Driver = "fax"
	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown notify driver")

	cfg = config.Default()
	cfg.TZName = "Nowhere/Special"
	_, err = New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Addr = "127.0.0.1:0"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
