// Package application contém os casos de uso do rate limit.
//
//   - Gate.Check: cota diária por identidade, fail open em falha de infraestrutura
//   - BurstService.Check: limite de burst por chave (allow/deny + retry-after), com stats
//   - ConcurrencyService.Admit: vaga com timeout, com stats
//
// Depende apenas do pacote domain e não conhece net/http.
package application
