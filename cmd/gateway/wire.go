package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	contactdomain "toolkit-gateway/contact/domain"
	contactinfra "toolkit-gateway/contact/infra"
	"toolkit-gateway/internal/config"
	"toolkit-gateway/middleware/ratelimit/application"
	"toolkit-gateway/middleware/ratelimit/domain"
	"toolkit-gateway/middleware/ratelimit/infra"
)

// deps abre os recursos externos sob demanda e fecha tudo em Close.
type deps struct {
	cfg *config.Config
	log *slog.Logger

	rdb redis.UniversalClient
	db  *gorm.DB

	closers []func() error
}

func newDeps(cfg *config.Config, log *slog.Logger) *deps {
	return &deps{cfg: cfg, log: log}
}

func (d *deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	d.closers = nil
	return errors.Join(errs...)
}

func (d *deps) redisClient(ctx context.Context) (redis.UniversalClient, error) {
	if d.rdb != nil {
		return d.rdb, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     d.cfg.Redis.Addr,
		Password: d.cfg.Redis.Password,
		DB:       d.cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	_, err := rdb.Ping(pingCtx).Result()
	cancel()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", d.cfg.Redis.Addr, err)
	}
	d.rdb = rdb
	d.closers = append(d.closers, rdb.Close)
	return rdb, nil
}

func (d *deps) database() (*gorm.DB, error) {
	if d.db != nil {
		return d.db, nil
	}
	var dialector gorm.Dialector
	switch d.cfg.Database.Driver {
	case "mysql":
		dialector = mysql.Open(d.cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(d.cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", d.cfg.Database.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.cfg.Database.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if d.cfg.Database.Driver == "sqlite" {
		// sqlite não tem SELECT ... FOR UPDATE; uma conexão serializa as transações
		sqlDB.SetMaxOpenConns(1)
	}
	d.db = db
	d.closers = append(d.closers, sqlDB.Close)
	return db, nil
}

func (d *deps) usageStore(ctx context.Context) (domain.UsageStore, error) {
	switch d.cfg.Quota.Backend {
	case "redis":
		rdb, err := d.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return infra.NewRedisUsageStore(rdb, infra.WithUsagePrefix(d.cfg.Redis.Prefix)), nil
	case "sql":
		db, err := d.database()
		if err != nil {
			return nil, err
		}
		store := infra.NewSQLUsageStore(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate usage_records: %w", err)
		}
		return store, nil
	default:
		d.log.Warn("quota backend is memory; the limit is per process")
		return infra.NewMemoryUsageStore(), nil
	}
}

// statsStore devolve nil quando as estatísticas estão desligadas. O Gatherer
// só vem preenchido no backend prometheus.
func (d *deps) statsStore(ctx context.Context) (domain.StatsStore, prometheus.Gatherer, error) {
	if !d.cfg.Stats.Enabled {
		return nil, nil, nil
	}
	switch d.cfg.Stats.Backend {
	case "redis":
		rdb, err := d.redisClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		return infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(d.cfg.Stats.Prefix),
			infra.WithStatsTTL(d.cfg.Stats.TTL),
			infra.WithStatsBucket(d.cfg.Stats.Bucket),
			infra.WithStatsTrackKeys(d.cfg.Stats.TrackKeys),
		), nil, nil
	case "memory":
		return infra.NewMemoryStatsStore(infra.WithTrackKeys(d.cfg.Stats.TrackKeys)), nil, nil
	default:
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		store, err := infra.NewPrometheusStatsStore(reg)
		if err != nil {
			return nil, nil, err
		}
		return store, reg, nil
	}
}

func (d *deps) gate(ctx context.Context, stats domain.StatsStore) (application.Gate, error) {
	store, err := d.usageStore(ctx)
	if err != nil {
		return application.Gate{}, err
	}
	return application.Gate{
		Store:    store,
		Limit:    d.cfg.Quota.DailyLimit,
		Location: d.cfg.Location(),
		Stats:    stats,
		Log:      d.log,
	}, nil
}

func (d *deps) contactRepo(ctx context.Context) (contactdomain.Repository, error) {
	if d.cfg.Contact.Backend == "memory" {
		return contactinfra.NewMemoryRepository(), nil
	}
	db, err := d.database()
	if err != nil {
		return nil, err
	}
	repo := contactinfra.NewGormRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate contact_submissions: %w", err)
	}
	return repo, nil
}

func (d *deps) notifier() contactdomain.Notifier {
	mc := contactinfra.MailConfig{
		Host:     d.cfg.Mail.Host,
		Port:     d.cfg.Mail.Port,
		Username: d.cfg.Mail.Username,
		Password: d.cfg.Mail.Password,
		From:     d.cfg.Mail.From,
		To:       d.cfg.Mail.To,
	}
	if !mc.Enabled() {
		return nil
	}
	return contactinfra.NewMailNotifier(mc)
}
