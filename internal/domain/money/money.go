package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale número de decimales con el que se guarda y se compara todo importe.
const Scale = 2

// Money importe de punto fijo (escala 2, redondeo half-up) sobre shopspring/decimal.
// El valor cero es un importe válido de 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero importe 0.00.
var Zero = Money{}

// New cuantiza d a la escala del importe.
func New(d decimal.Decimal) Money {
	return Money{d: quantize(d)}
}

// FromInt importe entero (p. ej. FromInt(100) = 100.00).
func FromInt(n int64) Money {
	return Money{d: decimal.NewFromInt(n)}
}

// FromCents construye el importe a partir de centavos.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -Scale)}
}

// Parse interpreta un importe textual ("174", "174.00", "1,250.50").
func Parse(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return Zero, fmt.Errorf("money: importe vacío")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: importe inválido %q: %w", s, err)
	}
	return New(d), nil
}

// MustParse como Parse pero hace panic; solo para constantes y tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// quantize redondea half-up (lejos de cero en el empate) a Scale decimales.
func quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Sum suma importes.
func Sum(ms ...Money) Money {
	total := decimal.Zero
	for _, m := range ms {
		total = total.Add(m.d)
	}
	return New(total)
}

func (m Money) Add(o Money) Money { return New(m.d.Add(o.d)) }
func (m Money) Sub(o Money) Money { return New(m.d.Sub(o.d)) }

// MulInt multiplica por una cantidad entera (cantidad × precio unitario).
func (m Money) MulInt(n int) Money {
	return New(m.d.Mul(decimal.NewFromInt(int64(n))))
}

// MulRate aplica una tasa (p. ej. 0.16) y cuantiza el resultado.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return New(m.d.Mul(rate))
}

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// Cmp devuelve -1, 0 o 1.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }

// Decimal expone el valor para persistencia (codec NUMERIC de pgx).
func (m Money) Decimal() decimal.Decimal { return m.d }

// String siempre con dos decimales: "174.00".
func (m Money) String() string { return m.d.StringFixed(Scale) }

// MarshalJSON serializa como string para no perder precisión en clientes JS.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON acepta string o número.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = New(d)
	return nil
}

// Value implementa driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implementa sql.Scanner.
func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = New(d)
	return nil
}
