// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Cota diária (domain.UsageStore):
//   - RedisUsageStore: hash por identidade, regra executada num script Lua
//   - SQLUsageStore: gorm, transação com SELECT ... FOR UPDATE
//   - MemoryUsageStore: map em memória, só para testes/dev
//
// Burst e concorrência:
//   - Store: token bucket por chave usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
//
// Estatísticas (domain.StatsStore): memória, Redis e Prometheus.
package infra
