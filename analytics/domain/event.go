package domain

// Event é um evento de atividade já validado pela camada de borda.
// Timestamp permanece como texto: o parse para instante UTC acontece uma
// única vez, no processamento.
type Event struct {
	Timestamp string
	UserID    string
	EventType string
	PageURL   string
	SessionID string
}

// PageCount é um item do ranking de páginas mais vistas.
type PageCount struct {
	PageURL string
	Views   int64
}
