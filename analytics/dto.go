package analytics

import (
	"strings"

	"event-analytics/analytics/domain"
)

// eventDTO é o payload de ingestão. Todos os campos são obrigatórios e não
// podem ser vazios/brancos; o timestamp é validado de verdade só no parse,
// dentro do Processor.
type eventDTO struct {
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	EventType string `json:"event_type"`
	PageURL   string `json:"page_url"`
	SessionID string `json:"session_id"`
}

// validate devolve uma mensagem por campo obrigatório ausente, na ordem dos
// campos do payload.
func (d eventDTO) validate() []string {
	var details []string
	for _, f := range []struct{ name, value string }{
		{"timestamp", d.Timestamp},
		{"user_id", d.UserID},
		{"event_type", d.EventType},
		{"page_url", d.PageURL},
		{"session_id", d.SessionID},
	} {
		if strings.TrimSpace(f.value) == "" {
			details = append(details, f.name+" is required")
		}
	}
	return details
}

func (d eventDTO) event() domain.Event {
	return domain.Event{
		Timestamp: d.Timestamp,
		UserID:    d.UserID,
		EventType: d.EventType,
		PageURL:   d.PageURL,
		SessionID: d.SessionID,
	}
}
