package application

import (
	"context"
	"strconv"
	"time"

	"event-analytics/analytics/domain"
)

// rateWindow é a janela de admissão: o limite vale por segundo corrente.
const rateWindow = time.Second

// Limiter é o gate de admissão da ingestão: uma janela deslizante de 1s
// mantida no armazenamento externo, compartilhada entre processos.
//
// A sequência prune -> count -> add são três round-trips separados e não é
// atômica: sob chamadas concorrentes o limite pode ser excedido
// transitoriamente. Essa semântica aproximada é intencional e mantida;
// trocá-la por um incremento condicional atômico mudaria o comportamento
// observável de admissão.
type Limiter struct {
	Store domain.Store
	// LimitPerSec <= 0 desliga o rate limit (sempre admite, sem tocar o
	// armazenamento).
	LimitPerSec int
	// Now permite injetar o relógio nos testes. Nil usa time.Now.
	Now func() time.Time
}

func (l Limiter) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Allow decide se o evento atual pode ser processado.
//
// Rejeição não registra a tentativa: só eventos admitidos consomem vaga na
// janela. O token é o próprio timestamp em ms (member == score).
func (l Limiter) Allow(ctx context.Context) (bool, error) {
	if l.LimitPerSec <= 0 {
		return true, nil
	}

	nowMs := domain.EpochMs(l.now())
	cutoff := nowMs - rateWindow.Milliseconds()

	if err := l.Store.RemoveByScoreBelow(ctx, domain.KeyRateLimit, cutoff); err != nil {
		return false, err
	}
	n, err := l.Store.CountByScoreFrom(ctx, domain.KeyRateLimit, cutoff)
	if err != nil {
		return false, err
	}
	if n >= int64(l.LimitPerSec) {
		return false, nil
	}

	token := strconv.FormatInt(nowMs, 10)
	if err := l.Store.AddWithScore(ctx, domain.KeyRateLimit, token, nowMs); err != nil {
		return false, err
	}
	return true, nil
}
