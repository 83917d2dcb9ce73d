// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - RedisStore: domain.Store sobre go-redis (sorted sets + hashes)
//   - MemoryStore: domain.Store em memória, para testes e desenvolvimento
//   - LocalStore: token bucket por cliente usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
package infra
