package application

import (
	"context"
	"time"

	"toolkit-gateway/middleware/ratelimit/domain"
)

// Attempt identifica a chamada RPC que está sendo decidida pelos limitadores do processo.
type Attempt struct {
	Key    domain.Key
	Method string
	Path   string
}

// BurstService aplica o token bucket por chave e registra cada decisão com
// origem SourceBurst, ao lado das decisões SourceDaily do Gate.
//
// Não sabe nada sobre HTTP (headers/status). O burst é só uma proteção do
// processo; a cota que vale para o usuário é o Gate.
type BurstService struct {
	Store      domain.LimiterStore
	Stats      domain.StatsStore
	RetryAfter time.Duration
	Now        func() time.Time
}

// Check decide e registra. Falha ao registrar não muda a decisão.
func (s BurstService) Check(ctx context.Context, at Attempt) domain.Decision {
	dec := s.Decide(at.Key)
	record(ctx, s.Stats, s.Now, domain.StatsEvent{
		Source:  domain.SourceBurst,
		Key:     at.Key,
		Allowed: dec.Allowed,
		Method:  at.Method,
		Path:    at.Path,
	})
	return dec
}

func (s BurstService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}
	return domain.Decision{Allowed: false, RetryAfter: s.RetryAfter}
}

func record(ctx context.Context, stats domain.StatsStore, now func() time.Time, ev domain.StatsEvent) {
	if stats == nil {
		return
	}
	if now == nil {
		now = time.Now
	}
	ev.At = now()
	_ = stats.Record(ctx, ev)
}
