package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolkit-gateway/middleware/ratelimit/domain"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRecordModel é a linha da tabela usage_records.
type UsageRecordModel struct {
	Identity    string    `gorm:"primaryKey;size:191"`
	Count       int       `gorm:"not null"`
	PeriodKey   string    `gorm:"size:10;not null"`
	LastUpdated time.Time `gorm:"not null"`
}

func (UsageRecordModel) TableName() string { return "usage_records" }

// SQLUsageStore implementa domain.UsageStore sobre gorm (MySQL em produção,
// SQLite em testes/dev).
//
// A linha da identidade é criada antes da leitura (INSERT ... ON CONFLICT DO
// NOTHING, count=0) e só então travada com SELECT ... FOR UPDATE. Assim duas
// primeiras requisições concorrentes sempre disputam o lock da mesma linha, e
// nunca um gap lock. Deadlock ou lock wait timeout do MySQL refazem a
// transação inteira.
type SQLUsageStore struct {
	db       *gorm.DB
	attempts int
	backoff  time.Duration
}

func NewSQLUsageStore(db *gorm.DB) *SQLUsageStore {
	return &SQLUsageStore{db: db, attempts: 5, backoff: 5 * time.Millisecond}
}

// Migrate cria/atualiza a tabela usage_records.
func (s *SQLUsageStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&UsageRecordModel{})
}

func (s *SQLUsageStore) Consume(ctx context.Context, identity domain.Key, period string, limit int, now time.Time) (domain.UsageRecord, error) {
	var (
		out domain.UsageRecord
		err error
	)
	for i := 0; i < s.attempts; i++ {
		out, err = s.consumeOnce(ctx, identity, period, limit, now)
		if !retryable(err) || i == s.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return out, fmt.Errorf("sql usage consume: %w", ctx.Err())
		case <-time.After(time.Duration(i+1) * s.backoff):
		}
	}
	if err != nil && !errors.Is(err, domain.ErrQuotaExceeded) {
		return out, fmt.Errorf("sql usage consume: %w", err)
	}
	return out, err
}

// retryable diz se a transação foi abortada pelo banco e pode ser refeita.
func retryable(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}
	return false
}

const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

func (s *SQLUsageStore) consumeOnce(ctx context.Context, identity domain.Key, period string, limit int, now time.Time) (domain.UsageRecord, error) {
	var out domain.UsageRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// linha vazia (count=0, sem período); Apply trata como período novo
		seed := &UsageRecordModel{Identity: string(identity), LastUpdated: now}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
			return err
		}

		var row UsageRecordModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("identity = ?", string(identity)).
			Take(&row).Error
		if err != nil {
			return err
		}

		next, err := domain.Apply(row.toDomain(), row.PeriodKey != "", identity, period, limit, now)
		out = next
		if err != nil {
			// rollback: negação não grava nada
			return err
		}

		return tx.Model(&UsageRecordModel{}).
			Where("identity = ?", string(identity)).
			Updates(map[string]any{
				"count":        next.Count,
				"period_key":   next.PeriodKey,
				"last_updated": next.LastUpdated,
			}).Error
	})
	return out, err
}

func (s *SQLUsageStore) Get(ctx context.Context, identity domain.Key) (domain.UsageRecord, bool, error) {
	var row UsageRecordModel
	err := s.db.WithContext(ctx).Where("identity = ?", string(identity)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UsageRecord{}, false, nil
	}
	if err != nil {
		return domain.UsageRecord{}, false, fmt.Errorf("sql usage get: %w", err)
	}
	if row.PeriodKey == "" {
		return domain.UsageRecord{}, false, nil
	}
	return row.toDomain(), true, nil
}

func (m UsageRecordModel) toDomain() domain.UsageRecord {
	return domain.UsageRecord{
		Identity:    domain.Key(m.Identity),
		Count:       m.Count,
		PeriodKey:   m.PeriodKey,
		LastUpdated: m.LastUpdated,
	}
}
