package application

import (
	"context"
	"strings"

	"event-analytics/analytics/domain"
)

// pageViewType é o único tipo de evento que alimenta o agregado de páginas.
// A comparação é case-insensitive.
const pageViewType = "page_view"

// Processor orquestra o processamento de um evento já validado: parse do
// timestamp (uma única vez), presença do usuário, presença da sessão e,
// para page views, o agregado do minuto.
type Processor struct {
	Users    PresenceSet
	Sessions PresenceSet
	Views    Pageviews
}

// Process aplica um evento.
//
// A primeira falha do armazenamento interrompe o processamento (fail-fast);
// passos já aplicados não são desfeitos. Nenhum erro é engolido: tudo sobe
// para a camada de borda decidir a resposta.
func (p Processor) Process(ctx context.Context, ev domain.Event) error {
	at, err := ParseTimestamp(ev.Timestamp)
	if err != nil {
		return err
	}
	if err := p.Users.Touch(ctx, domain.KeyActiveUsers, ev.UserID, at); err != nil {
		return err
	}
	if err := p.Sessions.Touch(ctx, domain.SessionsKey(ev.UserID), ev.SessionID, at); err != nil {
		return err
	}
	if strings.EqualFold(ev.EventType, pageViewType) {
		return p.Views.Increment(ctx, ev.PageURL, at)
	}
	return nil
}
