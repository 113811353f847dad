package domain

// Camada de domínio do rate limit.
//
// Dois limites convivem aqui:
//   - burst: token bucket por chave, em memória, só protege o processo contra rajadas;
//   - diário: cota por identidade persistida num store compartilhado (ver usage.go).

import (
	"strings"
	"time"
)

type Key string

// UnknownKey é a chave usada quando não há como identificar o chamador.
// Todos os chamadores desconhecidos dividem o mesmo balde.
const UnknownKey Key = "unknown"

// NormalizeKey deixa a identidade segura para ser usada como chave de storage
// (documento, hash do Redis, PK do SQL): ':' e '.' viram '_'.
func NormalizeKey(identity string) Key {
	id := strings.TrimSpace(identity)
	if id == "" {
		return UnknownKey
	}
	return Key(strings.NewReplacer(":", "_", ".", "_").Replace(id))
}

// Limiter representa algo que pode decidir se uma ação é permitida agora.
//
// Usado apenas pelo limite de burst (golang.org/x/time/rate na infra).
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: IP, API key, usuário).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
