package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/metrics"
)

func TestInitBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		DataBackend:  config.BackendSQLite,
		SQLiteDBPath: filepath.Join(t.TempDir(), "fintrack.db"),
	}

	res := InitBackend(context.Background(), logger, cfg)
	defer res.Cleanup()
	if err := res.Store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if res.Events != nil {
		t.Fatal("expected events to be disabled")
	}
}

func TestSessionSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	configured := SessionSecret(logger, &config.Config{SessionSecret: "configured-secret-configured-secret"})
	if string(configured) != "configured-secret-configured-secret" {
		t.Fatalf("expected configured secret, got %q", configured)
	}

	a := SessionSecret(logger, &config.Config{})
	b := SessionSecret(logger, &config.Config{})
	if len(a) < config.MinSessionSecretLength {
		t.Fatalf("generated secret too short: %d", len(a))
	}
	if string(a) == string(b) {
		t.Fatal("generated secrets should differ")
	}
}

func TestSetupLoggerSetsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	if slog.Default() != logger {
		t.Fatal("expected logger to become the default")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug level to be enabled")
	}
}

func TestServeMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	m.EventConsumed(nil)
	m.RowExported()

	srv, err := ServeMetrics(logger, "127.0.0.1:0", m.Handler())
	if err != nil {
		t.Fatalf("serve metrics: %v", err)
	}
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{"fintrack_sheet_rows_exported_total 1", "fintrack_ledger_events_total"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	if _, err := ServeMetrics(logger, "not-an-address", m.Handler()); err == nil {
		t.Error("expected an error for a bad address")
	}
}
