package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 20, cfg.Quota.DailyLimit)
	assert.Equal(t, "memory", cfg.Quota.Backend)
	assert.Equal(t, "prometheus", cfg.Stats.Backend)
	assert.Equal(t, 30*time.Second, cfg.Refine.Timeout)
	assert.Equal(t, "gemini-2.0-flash", cfg.Refine.Model)
	assert.Equal(t, 10, cfg.Burst.Burst)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TOOLKIT_QUOTA_DAILY_LIMIT", "5")
	t.Setenv("TOOLKIT_QUOTA_TIMEZONE", "Asia/Tokyo")
	t.Setenv("TOOLKIT_SERVER_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TOOLKIT_REFINE_TIMEOUT", "5s")
	t.Setenv("GEMINI_API_KEY", "k-123")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Quota.DailyLimit)
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Refine.Timeout)
	assert.Equal(t, "k-123", cfg.Refine.APIKey)
	assert.NoError(t, cfg.RequireModel())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TOOLKIT_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("TOOLKIT_LOG_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "gw.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
quota:
  backend: sql
  daily_limit: 7
database:
  driver: sqlite
  dsn: "file::memory:"
burst:
  rps: 0.5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sql", cfg.Quota.Backend)
	assert.Equal(t, 7, cfg.Quota.DailyLimit)
	assert.Equal(t, 1, cfg.Burst.Burst, "low rps should default burst to 1")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("nope.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"daily limit":   func(c *Config) { c.Quota.DailyLimit = 0 },
		"timezone":      func(c *Config) { c.Quota.Timezone = "Mars/Olympus" },
		"redis quota":   func(c *Config) { c.Quota.Backend = "redis" },
		"redis stats":   func(c *Config) { c.Stats.Backend = "redis" },
		"quota backend": func(c *Config) { c.Quota.Backend = "etcd" },
		"sql dsn":       func(c *Config) { c.Database.DSN = "" },
		"sql driver":    func(c *Config) { c.Database.Driver = "oracle" },
		"burst rps":     func(c *Config) { c.Burst.RPS = 0 },
		"concurrency":   func(c *Config) { c.Server.ConcurrencyMax = -1 },
		"proxies":       func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "gateway"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	assert.Error(t, base.RequireModel())
}
