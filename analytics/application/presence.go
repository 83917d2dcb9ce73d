package application

import (
	"context"
	"time"

	"event-analytics/analytics/domain"
)

// PresenceSet é um conjunto "visto por último dentro da janela", genérico
// sobre a chave: a mesma lógica serve para usuários ativos (chave global)
// e para sessões ativas (uma chave por usuário). Só mudam a janela, o
// formato da chave e o TTL.
//
// Cada member aparece no máximo uma vez; um novo Touch apenas atualiza o
// score para o instante mais recente.
type PresenceSet struct {
	Store  domain.Store
	Window time.Duration
	// TTL, quando > 0, é renovado na chave a cada Touch. As chaves por
	// usuário usam isso para que quem ficar totalmente ocioso seja
	// recolhido pelo próprio armazenamento, sem crescer o keyspace.
	TTL time.Duration
}

// Touch registra atividade do member no instante at.
//
// O prune vem antes do upsert para o conjunto nunca crescer sem limite no
// armazenamento.
func (p PresenceSet) Touch(ctx context.Context, key, member string, at time.Time) error {
	cutoff := domain.EpochMs(at.Add(-p.Window))
	if err := p.Store.RemoveByScoreBelow(ctx, key, cutoff); err != nil {
		return err
	}
	if err := p.Store.AddWithScore(ctx, key, member, domain.EpochMs(at)); err != nil {
		return err
	}
	if p.TTL > 0 {
		return p.Store.Expire(ctx, key, p.TTL)
	}
	return nil
}

// CountActive conta os members ativos na janela [now-Window, +inf).
//
// A borda inferior é inclusiva: score exatamente no corte ainda conta. O
// prune antecede a contagem, então uma leitura sem escrita intercalada
// nunca vê entradas vencidas.
func (p PresenceSet) CountActive(ctx context.Context, key string, now time.Time) (int64, error) {
	cutoff := domain.EpochMs(now.Add(-p.Window))
	if err := p.Store.RemoveByScoreBelow(ctx, key, cutoff); err != nil {
		return 0, err
	}
	return p.Store.CountByScoreFrom(ctx, key, cutoff)
}
