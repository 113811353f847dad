package infra

import (
	"context"
	"maps"
	"sort"
	"sync"

	"toolkit-gateway/contact/domain"
)

// MemoryRepository guarda submissões no processo (dev/teste).
type MemoryRepository struct {
	mu   sync.Mutex
	rows []domain.Submission
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, s *domain.Submission) error {
	cp := *s
	cp.Metadata = maps.Clone(s.Metadata)
	r.mu.Lock()
	r.rows = append(r.rows, cp)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) List(_ context.Context, limit int) ([]domain.Submission, error) {
	r.mu.Lock()
	out := make([]domain.Submission, 0, len(r.rows))
	for i := len(r.rows) - 1; i >= 0; i-- {
		out = append(out, r.rows[i])
	}
	r.mu.Unlock()

	// mais recentes primeiro; empates ficam na ordem inversa de inserção
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
