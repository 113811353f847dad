package infra

import (
	"context"
	"strings"
	"sync"

	"toolkit-gateway/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed  int64
	Denied   int64
	FailOpen int64
}

func (c *Counters) add(ev domain.StatsEvent) {
	switch {
	case !ev.Allowed:
		c.Denied++
	case ev.FailOpen:
		c.Allowed++
		c.FailOpen++
	default:
		c.Allowed++
	}
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	bySource map[string]Counters
	byRoute  map[string]Counters
	byKey    map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		bySource: make(map[string]Counters),
		byRoute:  make(map[string]Counters),
		byKey:    make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := strings.TrimSpace(ev.Method + " " + ev.Path)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev)
	bump(s.bySource, ev.Source, ev)
	if route != "" {
		bump(s.byRoute, route, ev)
	}
	if s.trackKeys && ev.Key != "" {
		bump(s.byKey, string(ev.Key), ev)
	}
	return nil
}

func bump(m map[string]Counters, k string, ev domain.StatsEvent) {
	c := m[k]
	c.add(ev)
	m[k] = c
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) BySource() map[string]Counters {
	return s.snapshot(func() map[string]Counters { return s.bySource })
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	return s.snapshot(func() map[string]Counters { return s.byRoute })
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	return s.snapshot(func() map[string]Counters { return s.byKey })
}

func (s *MemoryStatsStore) snapshot(pick func() map[string]Counters) map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := pick()
	out := make(map[string]Counters, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
