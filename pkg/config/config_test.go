package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/magistr/pkg/db"
	"github.com/japaniel/magistr/pkg/questions"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "magistr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Telegram.Token)
	assert.Equal(t, 30*time.Second, cfg.Telegram.PollTimeout)
	assert.Equal(t, db.DefaultDSN, cfg.DB.DSN)
	assert.Equal(t, questions.DefaultURLs, cfg.Questions.URLs)
	assert.Equal(t, 50, cfg.Demo.Size)
	assert.Equal(t, questions.DefaultFetcherConfig(), cfg.FetcherConfig())
}

func TestDefaultDoesNotAliasURLs(t *testing.T) {
	cfg := Default()
	cfg.Questions.URLs[0] = "http://changed"
	assert.NotEqual(t, "http://changed", questions.DefaultURLs[0])
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
telegram:
  poll_timeout: 5s
ws:
  addr: ":9090"
  origin_patterns: ["example.com"]
questions:
  urls: ["http://localhost/q"]
  max_retries: 1
demo:
  size: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Telegram.PollTimeout)
	assert.Equal(t, ":9090", cfg.WS.Addr)
	assert.Equal(t, []string{"example.com"}, cfg.WS.OriginPatterns)
	assert.Equal(t, []string{"http://localhost/q"}, cfg.Questions.URLs)
	assert.Equal(t, 1, cfg.FetcherConfig().MaxRetries)
	assert.Equal(t, 20, cfg.Demo.Size)
	// Untouched keys keep their defaults.
	assert.Equal(t, 4, cfg.Demo.Workers)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Demo.Size)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := Load(writeFile(t, "telegram:\n  tokn: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tokn")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "demo:\n  size: 20\n")
	t.Setenv("MAGISTR_TELEGRAM_TOKEN", "42:secret")
	t.Setenv("MAGISTR_DEMO_SIZE", "7")
	t.Setenv("MAGISTR_DELAY_BETWEEN_REQUESTS", "1.5")
	t.Setenv("MAGISTR_REQUEST_TIMEOUT", "250ms")
	t.Setenv("MAGISTR_WS_ORIGIN_PATTERNS", " a.example , ,b.example")
	t.Setenv("MAGISTR_BREAKER_MAX_FAILURES", "9")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "42:secret", cfg.Telegram.Token)
	assert.Equal(t, 7, cfg.Demo.Size)
	assert.Equal(t, 1500*time.Millisecond, cfg.Questions.Delay)
	assert.Equal(t, 250*time.Millisecond, cfg.Questions.Timeout)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.WS.OriginPatterns)
	assert.Equal(t, uint32(9), cfg.Questions.BreakerMaxFailures)
}

func TestBlankEnvIsIgnored(t *testing.T) {
	t.Setenv("MAGISTR_DB_DSN", "  ")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, db.DefaultDSN, cfg.DB.DSN)
}

func TestBadEnvValues(t *testing.T) {
	t.Setenv("MAGISTR_DEMO_SIZE", "много")
	t.Setenv("MAGISTR_REQUEST_TIMEOUT", "скоро")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAGISTR_DEMO_SIZE")
	assert.Contains(t, err.Error(), "MAGISTR_REQUEST_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero demo", func(c *Config) { c.Demo.Size = 0 }, "demo.size"},
		{"no workers", func(c *Config) { c.Demo.Workers = -1 }, "demo.workers"},
		{"no batch", func(c *Config) { c.Demo.BatchSize = 0 }, "demo.batch_size"},
		{"negative retries", func(c *Config) { c.Questions.MaxRetries = -1 }, "max_retries"},
		{"negative rate", func(c *Config) { c.Telegram.SendRate = -1 }, "send_rate"},
		{"no dsn", func(c *Config) { c.DB.DSN = "" }, "db.dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.NoError(t, Default().Validate())
}
