package analytics

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"event-analytics/analytics/application"
	"event-analytics/analytics/domain"

	"github.com/go-chi/chi/v5"
)

// Handler agrupa os casos de uso e os parâmetros de janela expostos nas
// respostas. Os campos *WindowMin repetem (em minutos) as janelas já
// embutidas nos casos de uso, para aparecerem no corpo das respostas.
type Handler struct {
	Limiter  application.Limiter
	Proc     application.Processor
	Users    application.PresenceSet
	Sessions application.PresenceSet
	Views    application.Pageviews

	UserWindowMin     int
	SessionWindowMin  int
	PageviewWindowMin int
	TopPagesLimit     int

	// Now permite injetar o relógio das consultas nos testes. Nil usa time.Now.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Routes monta o router da API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.dashboard)
	r.Get("/health", h.health)
	r.Post("/events", h.ingest)
	r.Get("/metrics/active_users", h.activeUsers)
	r.Get("/metrics/active_sessions", h.activeSessions)
	r.Get("/metrics/top_pages", h.topPages)
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	var dto eventDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Malformed JSON payload", nil)
		return
	}
	if details := dto.validate(); len(details) > 0 {
		writeError(w, http.StatusBadRequest, "invalid_event", "Validation failed", details)
		return
	}

	// admissão antes de qualquer processamento; rejeição tem status próprio
	ok, err := h.Limiter.Allow(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
		return
	}
	if !ok {
		writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many events", nil)
		return
	}

	if err := h.Proc.Process(r.Context(), dto.event()); err != nil {
		if errors.Is(err, domain.ErrMalformedTimestamp) {
			writeError(w, http.StatusBadRequest, "invalid_event", "Validation failed", []string{err.Error()})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted"})
}

func (h *Handler) activeUsers(w http.ResponseWriter, r *http.Request) {
	n, err := h.Users.CountActive(r.Context(), domain.KeyActiveUsers, h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"window_minutes": h.UserWindowMin,
		"active_users":   n,
	})
}

func (h *Handler) activeSessions(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing_user_id", "provide user_id query param", nil)
		return
	}

	n, err := h.Sessions.CountActive(r.Context(), domain.SessionsKey(userID), h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"window_minutes":  h.SessionWindowMin,
		"user_id":         userID,
		"active_sessions": n,
	})
}

func (h *Handler) topPages(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.Views.TopPages(r.Context(), h.now(), h.TopPagesLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
		return
	}

	// slice vazio serializa como [], nunca null
	pages := make([]pageCountDTO, 0, len(ranked))
	for _, pc := range ranked {
		pages = append(pages, pageCountDTO{PageURL: pc.PageURL, Views: pc.Views})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"window_minutes": h.PageviewWindowMin,
		"top_pages":      pages,
	})
}

type pageCountDTO struct {
	PageURL string `json:"page_url"`
	Views   int64  `json:"views"`
}
