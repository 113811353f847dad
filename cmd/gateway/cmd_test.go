package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contactdomain "toolkit-gateway/contact/domain"
	"toolkit-gateway/internal/config"
	"toolkit-gateway/internal/logger"
)

// sqlEnv aponta cota e contatos para um sqlite temporário.
func sqlEnv(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TOOLKIT_QUOTA_BACKEND", "sql")
	t.Setenv("TOOLKIT_CONTACT_BACKEND", "sql")
	t.Setenv("TOOLKIT_DATABASE_DRIVER", "sqlite")
	t.Setenv("TOOLKIT_DATABASE_DSN", filepath.Join(dir, "toolkit.db"))
	t.Setenv("TOOLKIT_LOG_LEVEL", "error")

	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestUsageCommand(t *testing.T) {
	cfg := sqlEnv(t)
	ctx := context.Background()

	d := newDeps(cfg, logger.New(&bytes.Buffer{}, logger.Options{}))
	gate, err := d.gate(ctx, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.True(t, gate.Check(ctx, "10.0.0.1"))
	}
	require.NoError(t, d.Close())

	out := run(t, "usage", "10.0.0.1")
	assert.Contains(t, out, "identity:  10_0_0_1")
	assert.Contains(t, out, "count:     3")
	assert.Contains(t, out, "remaining: 17/20")

	out = run(t, "usage", "10.0.0.2")
	assert.Contains(t, out, "no usage recorded")
}

func TestContactsListCommand(t *testing.T) {
	cfg := sqlEnv(t)
	ctx := context.Background()

	d := newDeps(cfg, logger.New(&bytes.Buffer{}, logger.Options{}))
	repo, err := d.contactRepo(ctx)
	require.NoError(t, err)
	base := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	for i, subject := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &contactdomain.Submission{
			ID:        subject,
			Email:     "a@example.com",
			Subject:   subject,
			Message:   "m",
			Language:  "ja",
			Identity:  "1_2_3_4",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Status:    contactdomain.StatusNew,
		}))
	}
	require.NoError(t, d.Close())

	out := run(t, "contacts", "list", "--limit", "2")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "third"))
	assert.True(t, strings.HasPrefix(lines[2], "second"))
}

func TestServeRequiresAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TOOLKIT_REFINE_API_KEY", "")
	t.Setenv("TOOLKIT_LOG_LEVEL", "error")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"serve"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a b", truncate("a\n b", 10))
}
