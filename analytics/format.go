// utilitário pequeno para formatação rápida/consistente de valores
// numéricos em headers. Evita puxar fmt (mais pesado e genérico) só para
// isso e padroniza floats sem notação científica em valores comuns.

package analytics

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
