package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/runixer/evalboard/internal/config"
	"github.com/runixer/evalboard/internal/i18n"
)

// TestLogger returns a discarding logger for tests.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestConfig returns a config with sensible test defaults.
func TestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	cfg.Server.ListenPort = "0"
	cfg.Evaluator = config.EvaluatorConfig{
		BaseURL: "http://evaluator.test",
		Timeout: "5s",
	}
	cfg.Dashboard = config.DashboardConfig{
		Language:   "en",
		Timezone:   "UTC",
		PageSize:   10,
		SessionTTL: "30m",
	}
	cfg.Fixture = config.FixtureConfig{
		ListenPort:   "0",
		DatabasePath: ":memory:",
		Version:      "1",
	}
	return cfg
}

// TestTranslator returns the embedded translator with English as default.
func TestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator("en")
	if err != nil {
		t.Fatalf("failed to create test translator: %v", err)
	}
	return tr
}

// TestLocalizer returns the English localizer.
func TestLocalizer(t *testing.T) i18n.Localizer {
	t.Helper()
	return TestTranslator(t).For("en")
}

// Eventually polls cond until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
