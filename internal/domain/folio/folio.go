// Package folio genera el identificador legible de las órdenes: SR-0007-2025.
// La secuencia es por año y se deriva escaneando los folios existentes; no es
// atómica por sí sola, el caller la envuelve en un reintento acotado.
package folio

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultPrefix prefijo de las órdenes de servicio.
const DefaultPrefix = "SR"

// Format construye el folio con la secuencia rellenada a 4 dígitos.
func Format(prefix string, seq, year int) string {
	return fmt.Sprintf("%s-%04d-%d", prefix, seq, year)
}

// Suffix sufijo común a todos los folios del año ("-2025").
func Suffix(year int) string {
	return fmt.Sprintf("-%d", year)
}

func pattern(prefix string, year int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%s-(\d{4,})-%d$`, regexp.QuoteMeta(prefix), year))
}

// Next toma el máximo de la secuencia entre los folios del año y suma uno.
// Las filas mal formadas se ignoran. Sin folios en el año empieza en 1.
func Next(prefix string, existing []string, year int) string {
	patt := pattern(prefix, year)
	maxN := 0
	for _, f := range existing {
		m := patt.FindStringSubmatch(f)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxN {
			maxN = n
		}
	}
	return Format(prefix, maxN+1, year)
}

// Valid indica si f es un folio bien formado para el año.
func Valid(prefix, f string, year int) bool {
	return pattern(prefix, year).MatchString(f)
}
