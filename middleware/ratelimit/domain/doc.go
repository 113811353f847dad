// Package domain define contratos e tipos de domínio para rate limit, cota diária
// e concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A regra da cota diária (Apply) é pura e fica aqui para que todos os stores
// (memória, Redis, SQL) decidam exatamente da mesma forma.
package domain
