package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/ratechat-server/internal/config"
	applog "github.com/vovakirdan/ratechat-server/internal/log"
	"github.com/vovakirdan/ratechat-server/internal/store"
)

func testConfig(t *testing.T, driver string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	cfg.Rates.BaseURL = "http://127.0.0.1:1"
	cfg.ExchangeLog.Driver = driver
	cfg.ExchangeLog.Path = filepath.Join(t.TempDir(), "exchange.log")
	return cfg
}

func TestNewServesHealth(t *testing.T) {
	cfg := testConfig(t, "file")
	a, err := New(&cfg, applog.Nop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(a.cleanup)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestOpenJournalDrivers(t *testing.T) {
	for _, driver := range []string{"file", "sqlite"} {
		cfg := testConfig(t, driver)
		j, err := openJournal(cfg.ExchangeLog)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if err := j.AppendExchange(context.Background(), "USD: buy: 1, sale: 2"); err != nil {
			t.Fatalf("%s append: %v", driver, err)
		}
		_, readable := j.(store.ExchangeLogReader)
		if readable != (driver == "sqlite") {
			t.Fatalf("%s: unexpected reader support %v", driver, readable)
		}
		_ = j.Close()
	}

	if _, err := openJournal(config.ExchangeLogConfig{Driver: "redis", Path: "x"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "file")
	a, err := New(&cfg, applog.Nop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("run did not stop")
	}
}
