package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_port: "9001"
evaluator:
  base_url: "http://evaluator.local:5000"
  timeout: "5s"
  page_size: 50
dashboard:
  language: "vi"
  timezone: "Asia/Ho_Chi_Minh"
  page_size: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.Server.ListenPort)
	assert.Equal(t, "http://evaluator.local:5000", cfg.Evaluator.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Evaluator.GetTimeout())
	assert.Equal(t, 50, cfg.Evaluator.PageSize)
	assert.Equal(t, "vi", cfg.Dashboard.Language)
	assert.Equal(t, 20, cfg.Dashboard.GetPageSize())
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Dashboard.GetLocation().String())
}

func TestLoad_FileNotExists_FallsBackToDefault(t *testing.T) {
	cfg, err := Load("non_existent_file.yaml")
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "9081", cfg.Server.ListenPort)
}

func TestLoadDefault(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, "9081", cfg.Server.ListenPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Evaluator.BaseURL)
	assert.Equal(t, 100, cfg.Evaluator.PageSize)
	assert.Equal(t, "en", cfg.Dashboard.Language)
	assert.Equal(t, DefaultPageSize, cfg.Dashboard.GetPageSize())
	assert.Equal(t, DefaultSessionTTL, cfg.Dashboard.GetSessionTTL())
	assert.Equal(t, ":memory:", cfg.Fixture.DatabasePath)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_WithEnvVars(t *testing.T) {
	t.Setenv("TEST_EVALUATOR_HOST", "evaluator.internal")
	t.Setenv("EVALBOARD_SERVER_PORT", "7000")

	path := writeConfig(t, `
evaluator:
  base_url: "http://${TEST_EVALUATOR_HOST}:5000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://evaluator.internal:5000", cfg.Evaluator.BaseURL)
	assert.Equal(t, "7000", cfg.Server.ListenPort)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("EVALBOARD_EVALUATOR_URL", "https://from-env.example")
	t.Setenv("EVALBOARD_LANGUAGE", "vi")

	path := writeConfig(t, `
evaluator:
  base_url: "http://from-file.example"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example", cfg.Evaluator.BaseURL)
	assert.Equal(t, "vi", cfg.Dashboard.Language)
}

func TestLoad_MergesWithDefaults(t *testing.T) {
	path := writeConfig(t, `dashboard:
  language: "vi"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vi", cfg.Dashboard.Language)
	assert.Equal(t, "9081", cfg.Server.ListenPort)
	assert.Equal(t, "UTC", cfg.Dashboard.Timezone)
	assert.Equal(t, "30s", cfg.Evaluator.Timeout)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name: "missing port",
			mutate: func(c *Config) {
				c.Server.ListenPort = ""
			},
			wantErr: []string{"server.listen_port is required"},
		},
		{
			name: "bad base url scheme",
			mutate: func(c *Config) {
				c.Evaluator.BaseURL = "ftp://evaluator"
			},
			wantErr: []string{"evaluator.base_url"},
		},
		{
			name: "several problems reported together",
			mutate: func(c *Config) {
				c.Evaluator.Timeout = "soon"
				c.Dashboard.SessionTTL = "forever"
				c.Dashboard.Timezone = "Mars/Olympus"
				c.Dashboard.PageSize = -1
			},
			wantErr: []string{"evaluator.timeout", "dashboard.session_ttl", "dashboard.timezone", "dashboard.page_size"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadDefault()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestGetters_FallBackOnInvalidValues(t *testing.T) {
	e := EvaluatorConfig{Timeout: "nonsense"}
	assert.Equal(t, DefaultEvaluatorTimeout, e.GetTimeout())

	d := DashboardConfig{SessionTTL: "-5m", PageSize: 0, Timezone: "Nowhere/Special"}
	assert.Equal(t, DefaultSessionTTL, d.GetSessionTTL())
	assert.Equal(t, DefaultPageSize, d.GetPageSize())
	assert.Equal(t, time.UTC, d.GetLocation())
}
