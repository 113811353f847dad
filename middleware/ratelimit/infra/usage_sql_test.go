package infra

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"toolkit-gateway/middleware/ratelimit/domain"
)

func setupUsageDB(t *testing.T) *SQLUsageStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := NewSQLUsageStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestSQLUsageStore_Contract(t *testing.T) {
	usageStoreContract(t, setupUsageDB(t))
}

func TestSQLUsageStore_DenialDoesNotTouchLastUpdated(t *testing.T) {
	store := setupUsageDB(t)
	ctx := context.Background()
	first := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	_, err := store.Consume(ctx, "k", "2026-03-09", 1, first)
	require.NoError(t, err)

	_, err = store.Consume(ctx, "k", "2026-03-09", 1, first.Add(time.Hour))
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.Count)
	assert.True(t, got.LastUpdated.Equal(first), "last updated changed to %s", got.LastUpdated)
}

func TestSQLUsageStore_ConcurrentFirstRequestsNeverOverAdmit(t *testing.T) {
	store := setupUsageDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	const (
		limit   = 20
		callers = 35
	)

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
		denied  atomic.Int32
		failed  atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Consume(ctx, "fresh", "2026-03-09", limit, now)
			switch {
			case err == nil:
				allowed.Add(1)
			case errors.Is(err, domain.ErrQuotaExceeded):
				denied.Add(1)
			default:
				failed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(limit), allowed.Load())
	assert.Equal(t, int32(callers-limit), denied.Load())
	assert.Zero(t, failed.Load())

	got, ok, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, limit, got.Count)
}

func TestSQLUsageStore_RetriesDeadlockVictim(t *testing.T) {
	store := setupUsageDB(t)
	ctx := context.Background()

	// a primeira leitura com lock falha como um deadlock do InnoDB
	var injected atomic.Bool
	require.NoError(t, store.db.Callback().Query().Before("gorm:query").Register("test:deadlock", func(db *gorm.DB) {
		if injected.CompareAndSwap(false, true) {
			_ = db.AddError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
		}
	}))

	rec, err := store.Consume(ctx, "victim", "2026-03-09", 20, time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
	assert.True(t, injected.Load())

	got, ok, err := store.Get(ctx, "victim")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.Count)
}

func TestSQLUsageStore_GivesUpAfterAttempts(t *testing.T) {
	store := setupUsageDB(t)
	var calls atomic.Int32
	require.NoError(t, store.db.Callback().Query().Before("gorm:query").Register("test:lockwait", func(db *gorm.DB) {
		calls.Add(1)
		_ = db.AddError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
	}))

	_, err := store.Consume(context.Background(), "stuck", "2026-03-09", 20, time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, int32(store.attempts), calls.Load())
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: 1213})))
	assert.True(t, retryable(&mysql.MySQLError{Number: 1205}))
	assert.False(t, retryable(&mysql.MySQLError{Number: 1062}))
	assert.False(t, retryable(domain.ErrQuotaExceeded))
	assert.False(t, retryable(nil))
}
