package application

import (
	"fmt"
	"time"

	"event-analytics/analytics/domain"
)

// naiveLayout é o date-time sem offset; segundos fracionários no final são
// aceitos pelo time.Parse.
const naiveLayout = "2006-01-02T15:04:05"

// ParseTimestamp normaliza o timestamp do evento para um instante UTC.
//
// A ordem das tentativas importa e faz parte do contrato: primeiro o formato
// com offset explícito (RFC3339), convertido para UTC; se falhar, o
// date-time naive é interpretado como já estando em UTC — nunca se adivinha
// a timezone local do processo.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(naiveLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrMalformedTimestamp, s)
	}
	return t.UTC(), nil
}
