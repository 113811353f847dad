// Package domain define a submissão do formulário de contato e os contratos de
// persistência e notificação.
package domain

import (
	"context"
	"time"
)

// StatusNew é o status inicial de toda submissão.
const StatusNew = "new"

// UnknownIdentity é usada quando não há endereço de rede nem usuário autenticado.
const UnknownIdentity = "unknown"

type Submission struct {
	ID        string
	Email     string
	Subject   string
	Message   string
	Language  string
	Identity  string
	CreatedAt time.Time
	Status    string
	// Metadata guarda dados da requisição (user agent, origin...).
	Metadata map[string]string
}

// Repository é a coleção append-only de submissões.
type Repository interface {
	Create(ctx context.Context, s *Submission) error
	// List devolve as submissões mais recentes primeiro.
	List(ctx context.Context, limit int) ([]Submission, error)
}

// Notifier avisa a equipe sobre uma nova submissão.
type Notifier interface {
	Notify(ctx context.Context, s Submission) error
}

// ResolveIdentity escolhe a identidade do chamador:
// endereço de rede -> id do usuário autenticado -> UnknownIdentity.
func ResolveIdentity(addr, uid string) string {
	switch {
	case addr != "" && addr != UnknownIdentity:
		return addr
	case uid != "":
		return uid
	default:
		return UnknownIdentity
	}
}
