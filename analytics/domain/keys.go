package domain

import "time"

// Espaço de chaves no armazenamento externo.
const (
	// KeyRateLimit guarda os tokens da janela de admissão (1s).
	KeyRateLimit = "rl:z"
	// KeyActiveUsers guarda o conjunto global de usuários ativos.
	KeyActiveUsers = "au:z"
)

// bucketStampLayout é o carimbo yyyyMMddHHmm em UTC de um bucket de minuto.
const bucketStampLayout = "200601021504"

// SessionsKey é a chave do conjunto de sessões ativas de um usuário.
func SessionsKey(userID string) string { return "sessions:" + userID + ":z" }

// PageviewKey identifica o bucket de pageviews do minuto de t.
func PageviewKey(t time.Time) string {
	return "pv:" + t.UTC().Format(bucketStampLayout)
}

// TruncateMinute alinha t ao início do minuto, em UTC.
func TruncateMinute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// EpochMs converte t para milissegundos desde a epoch, o score usado em
// todas as janelas.
func EpochMs(t time.Time) int64 { return t.UnixMilli() }
