package domain

import (
	"context"
	"time"
)

// Store é a capability mínima exigida do armazenamento externo.
//
// São exatamente as seis operações primitivas que os algoritmos de janela
// deslizante consomem: upsert com score, prune por faixa de score, contagem
// por faixa de score, incremento em hash, TTL e leitura integral de hash.
// Cada operação é atômica no armazenamento; uma sequência de chamadas não é.
//
// Implementações podem usar Redis (sorted sets + hashes) ou memória.
type Store interface {
	// AddWithScore insere ou atualiza member no conjunto ordenado (upsert:
	// re-adicionar o mesmo member apenas troca o score).
	AddWithScore(ctx context.Context, key, member string, score int64) error

	// RemoveByScoreBelow remove os members com score estritamente menor
	// que min. O limite inferior da janela é inclusivo: quem está exatamente
	// no corte sobrevive ao prune.
	RemoveByScoreBelow(ctx context.Context, key string, min int64) error

	// CountByScoreFrom conta os members com score em [min, +inf).
	CountByScoreFrom(ctx context.Context, key string, min int64) (int64, error)

	// IncrementField soma delta ao campo do hash, criando chave e campo
	// se não existirem.
	IncrementField(ctx context.Context, key, field string, delta int64) error

	// Expire (re)define o tempo de vida da chave. Chave inexistente é no-op.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Fields devolve todos os campos do hash; mapa vazio se a chave não
	// existe (bucket expirado não é erro).
	Fields(ctx context.Context, key string) (map[string]string, error)
}
