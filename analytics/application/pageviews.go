package application

import (
	"context"
	"sort"
	"strconv"
	"time"

	"event-analytics/analytics/domain"
)

// bucketTTLFactor: buckets vivem 120x a janela e somem sozinhos; o core
// nunca deleta bucket explicitamente.
const bucketTTLFactor = 120

// Pageviews agrega visualizações de página em buckets de um minuto no
// armazenamento externo (um hash por minuto, página -> contagem).
type Pageviews struct {
	Store         domain.Store
	WindowMinutes int
}

func (p Pageviews) ttl() time.Duration {
	return time.Duration(p.WindowMinutes) * bucketTTLFactor * time.Minute
}

// Increment soma 1 à página no bucket do minuto de at e renova o TTL do
// bucket.
func (p Pageviews) Increment(ctx context.Context, pageURL string, at time.Time) error {
	key := domain.PageviewKey(at)
	if err := p.Store.IncrementField(ctx, key, pageURL, 1); err != nil {
		return err
	}
	return p.Store.Expire(ctx, key, p.ttl())
}

// TopPages devolve as n páginas mais vistas na janela que termina em now.
func (p Pageviews) TopPages(ctx context.Context, now time.Time, n int) ([]domain.PageCount, error) {
	return rankBuckets(ctx, now, p.WindowMinutes, n, p.Store.Fields)
}

// rankBuckets é o núcleo puro do ranking: varre os buckets dos últimos
// window minutos (inclusive o minuto corrente truncado) através de read e
// soma as contagens por página.
//
// A varredura é determinística: buckets do mais recente para o mais antigo
// e campos de cada bucket em ordem lexicográfica. O sort é estável e
// desempata pela primeira aparição na varredura. Bucket inexistente
// (expirado ou nunca escrito) contribui com nada.
func rankBuckets(ctx context.Context, now time.Time, window, n int, read func(context.Context, string) (map[string]string, error)) ([]domain.PageCount, error) {
	minute := domain.TruncateMinute(now)
	totals := make(map[string]int64)
	var order []string

	for i := 0; i < window; i++ {
		fields, err := read(ctx, domain.PageviewKey(minute.Add(-time.Duration(i)*time.Minute)))
		if err != nil {
			return nil, err
		}
		pages := make([]string, 0, len(fields))
		for page := range fields {
			pages = append(pages, page)
		}
		sort.Strings(pages)
		for _, page := range pages {
			count, err := strconv.ParseInt(fields[page], 10, 64)
			if err != nil {
				// campo corrompido não derruba a consulta inteira
				continue
			}
			if _, seen := totals[page]; !seen {
				order = append(order, page)
			}
			totals[page] += count
		}
	}

	ranked := make([]domain.PageCount, 0, len(order))
	for _, page := range order {
		if totals[page] <= 0 {
			continue
		}
		ranked = append(ranked, domain.PageCount{PageURL: page, Views: totals[page]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Views > ranked[j].Views })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}
