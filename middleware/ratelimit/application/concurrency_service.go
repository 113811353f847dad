package application

import (
	"context"
	"time"

	"toolkit-gateway/middleware/ratelimit/domain"
)

// ConcurrencyService limita quantas RPCs ficam em voo, com timeout de espera,
// sem saber nada sobre HTTP. Recusas aparecem nas stats com origem SourceConcurrency.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
	Stats          domain.StatsStore
	Now            func() time.Time
}

// Admit adquire uma vaga para a chamada e registra o resultado.
// A vaga não é por chave, então o evento sai sem Key.
func (s ConcurrencyService) Admit(ctx context.Context, at Attempt) (release func(), ok bool) {
	release, ok = s.Acquire(ctx)
	record(ctx, s.Stats, s.Now, domain.StatsEvent{
		Source:  domain.SourceConcurrency,
		Allowed: ok,
		Method:  at.Method,
		Path:    at.Path,
	})
	return release, ok
}

// Acquire tenta adquirir uma vaga.
//   - AcquireTimeout <= 0: espera até o ctx cancelar.
//   - AcquireTimeout > 0: desiste depois do timeout.
//
// Se ok=false, nenhuma vaga foi adquirida e release não deve ser chamado.
func (s ConcurrencyService) Acquire(ctx context.Context) (release func(), ok bool) {
	if s.Pool == nil {
		return func() {}, true
	}
	if s.AcquireTimeout <= 0 {
		return s.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Pool.Acquire(acqCtx)
}
