package infra

import (
	"context"

	"toolkit-gateway/middleware/ratelimit/domain"
)

// chanPool é um semáforo baseado em channel.
type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool com capacidade max. max <= 0 vira 1.
func NewChanPool(max int) domain.SlotPool {
	if max <= 0 {
		max = 1
	}
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}
	var released bool
	return func() {
		if released {
			return
		}
		released = true
		<-p.sem
	}, true
}

// InUse devolve quantas vagas estão ocupadas agora.
func InUse(pool domain.SlotPool) int {
	if p, ok := pool.(*chanPool); ok {
		return len(p.sem)
	}
	return 0
}
