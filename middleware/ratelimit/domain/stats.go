package domain

import (
	"context"
	"time"
)

// Origem da decisão registrada em StatsEvent.
const (
	SourceBurst       = "burst"
	SourceConcurrency = "concurrency"
	SourceDaily       = "daily"
)

// StatsEvent representa um evento de decisão do rate limit.
//
// Method/Path são preenchidos pelos limitadores HTTP (burst, concorrência);
// a cota diária não conhece HTTP e deixa ambos vazios. Concorrência não tem Key.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key sem controle pode
// explodir o número de séries/chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	Source  string
	Key     Key
	Allowed bool
	// FailOpen indica que o store falhou e a requisição foi liberada mesmo assim.
	FailOpen bool

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do rate limit.
//
// Quem registra deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
