package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"toolkit-gateway/middleware/ratelimit/domain"
)

// Gate é a cota diária por identidade (RateGate).
//
// Não guarda nenhum estado em memória: toda decisão relê e regrava o
// UsageRecord no Store dentro de uma transação, então várias instâncias do
// processo podem atender a mesma identidade ao mesmo tempo.
type Gate struct {
	Store domain.UsageStore
	// Limit é a cota por período. Se <= 0, usa domain.DefaultDailyLimit.
	Limit int
	// Location define onde o dia vira. Se nil, UTC.
	Location *time.Location
	Now      func() time.Time
	Stats    domain.StatsStore
	Log      *slog.Logger
}

// Check decide se a identidade ainda tem cota hoje e, se tiver, consome uma unidade.
//
// Só devolve false quando a cota estourou. Qualquer outra falha do store
// libera a requisição (fail open) e é logada.
func (g Gate) Check(ctx context.Context, identity string) bool {
	key := domain.NormalizeKey(identity)
	if g.Store == nil {
		return true
	}

	limit := g.Limit
	if limit <= 0 {
		limit = domain.DefaultDailyLimit
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	at := now()
	period := domain.PeriodKey(at, g.Location)

	ev := domain.StatsEvent{Source: domain.SourceDaily, Key: key, At: at}

	rec, err := g.Store.Consume(ctx, key, period, limit, at)
	switch {
	case err == nil:
		ev.Allowed = true
		g.logger().DebugContext(ctx, "quota consumed", "identity", key, "period", period, "count", rec.Count, "limit", limit)
	case errors.Is(err, domain.ErrQuotaExceeded):
		g.logger().InfoContext(ctx, "quota exceeded", "identity", key, "period", period, "limit", limit)
	default:
		ev.Allowed = true
		ev.FailOpen = true
		g.logger().ErrorContext(ctx, "quota store failed, allowing request", "identity", key, "period", period, "error", err)
	}

	if g.Stats != nil {
		if err := g.Stats.Record(ctx, ev); err != nil {
			g.logger().WarnContext(ctx, "quota stats record failed", "error", err)
		}
	}
	return ev.Allowed
}

// Usage devolve o registro atual da identidade, sem consumir cota.
func (g Gate) Usage(ctx context.Context, identity string) (domain.UsageRecord, bool, error) {
	if g.Store == nil {
		return domain.UsageRecord{}, false, nil
	}
	return g.Store.Get(ctx, domain.NormalizeKey(identity))
}

func (g Gate) logger() *slog.Logger {
	if g.Log != nil {
		return g.Log
	}
	return slog.Default()
}
