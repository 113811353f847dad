package infra

import (
	"context"
	"sync"
	"time"

	"toolkit-gateway/middleware/ratelimit/domain"
)

// MemoryUsageStore guarda os UsageRecord num map do processo.
//
// Consume é atômico dentro do processo, mas a cota não é compartilhada entre
// instâncias: serve para testes e desenvolvimento, não para produção com
// mais de uma réplica.
type MemoryUsageStore struct {
	mu      sync.Mutex
	records map[domain.Key]domain.UsageRecord
}

func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{records: make(map[domain.Key]domain.UsageRecord)}
}

func (s *MemoryUsageStore) Consume(_ context.Context, identity domain.Key, period string, limit int, now time.Time) (domain.UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.records[identity]
	next, err := domain.Apply(prev, exists, identity, period, limit, now)
	if err != nil {
		return prev, err
	}
	s.records[identity] = next
	return next, nil
}

func (s *MemoryUsageStore) Get(_ context.Context, identity domain.Key) (domain.UsageRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[identity]
	return rec, ok, nil
}
