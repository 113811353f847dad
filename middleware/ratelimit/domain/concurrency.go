package domain

import "context"

// SlotPool limita quantas chamadas RPC ficam em voo ao mesmo tempo no processo
// (cada refinePrompt segura uma vaga enquanto espera o modelo).
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar; o release
// devolvido deve ser chamado exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
