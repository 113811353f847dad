// Package ratelimit fornece adapters HTTP (net/http) para o limite de burst e o
// limite de concorrência que ficam na frente das RPCs.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos (cota diária, burst, estatísticas), sem net/http
//   - application: Gate (cota diária, fail open), BurstService, ConcurrencyService
//   - infra: stores concretos (Redis, SQL, memória, x/time/rate, Prometheus)
//   - ratelimit (este pacote): middlewares HTTP + extração da chave do chamador
//
// Fluxo no servidor:
//
//  1. ConcurrencyMiddleware reserva uma vaga (503 se não conseguir)
//  2. o handler da RPC decodifica e valida o payload (400 sem gastar burst nem cota)
//  3. Middleware aplica o burst por chave (429 + Retry-After)
//  4. o serviço consulta o Gate (cota diária)
package ratelimit
