package infra

import (
	"context"

	"toolkit-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore expõe as decisões como contador Prometheus.
//
// Labels: source (burst|daily) e result (allowed|denied|fail_open).
// A chave do chamador não vira label para não explodir cardinalidade.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

// NewPrometheusStatsStore registra o contador em reg. Se reg for nil, usa
// prometheus.DefaultRegisterer.
func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "toolkit",
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      "Rate limit decisions by source and result.",
	}, []string{"source", "result"})
	if err := reg.Register(decisions); err != nil {
		return nil, err
	}
	return &PrometheusStatsStore{decisions: decisions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	source := ev.Source
	if source == "" {
		source = domain.SourceBurst
	}
	result := "allowed"
	switch {
	case !ev.Allowed:
		result = "denied"
	case ev.FailOpen:
		result = "fail_open"
	}
	s.decisions.WithLabelValues(source, result).Inc()
	return nil
}

// Counter devolve o contador subjacente (útil para testes).
func (s *PrometheusStatsStore) Counter() *prometheus.CounterVec { return s.decisions }
