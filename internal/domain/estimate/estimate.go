// Package estimate deriva el estado agregado de una cotización y calcula sus totales.
package estimate

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

// DefaultTaxRate IVA 16%.
var DefaultTaxRate = decimal.RequireFromString("0.16")

// DeriveStatus función pura del multiconjunto de decisiones.
// Una cotización sin partidas queda PENDING: no hay nada decidido.
func DeriveStatus(decisions []entity.Decision) entity.EstimateStatus {
	var pending, accepted, rejected int
	for _, d := range decisions {
		switch d {
		case entity.DecisionAccepted:
			accepted++
		case entity.DecisionRejected:
			rejected++
		default:
			pending++
		}
	}
	switch {
	case pending > 0 || len(decisions) == 0:
		return entity.EstimatePending
	case rejected == 0:
		return entity.EstimateClosedAccepted
	case accepted == 0:
		return entity.EstimateClosedRejected
	default:
		return entity.EstimateClosedPartial
	}
}

// Totals subtotal, impuesto y total, cada uno cuantizado a 2 decimales.
type Totals struct {
	Subtotal money.Money
	Tax      money.Money
	Total    money.Money
}

func totals(items []entity.EstimateItem, include func(*entity.EstimateItem) bool, applyTax bool, rate decimal.Decimal) Totals {
	subtotal := money.Zero
	for i := range items {
		if include(&items[i]) {
			subtotal = subtotal.Add(items[i].LineTotal())
		}
	}
	tax := money.Zero
	if applyTax {
		tax = subtotal.MulRate(rate)
	}
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// AcceptedTotals totales solo sobre partidas ACEPTADAS. Es la base del monto aprobado de la orden.
func AcceptedTotals(items []entity.EstimateItem, applyTax bool, rate decimal.Decimal) Totals {
	return totals(items, func(it *entity.EstimateItem) bool {
		return it.Status == entity.DecisionAccepted
	}, applyTax, rate)
}

// QuoteTotals totales de la cotización completa (lo que se guarda en la cabecera).
func QuoteTotals(items []entity.EstimateItem, applyTax bool, rate decimal.Decimal) Totals {
	return totals(items, func(*entity.EstimateItem) bool { return true }, applyTax, rate)
}

// Recompute vuelve a derivar estado y totales de la cabecera a partir de las partidas.
func Recompute(e *entity.Estimate, rate decimal.Decimal) {
	t := QuoteTotals(e.Items, e.ApplyTax, rate)
	e.Subtotal, e.Tax, e.Total = t.Subtotal, t.Tax, t.Total
	e.Status = DeriveStatus(e.Decisions())
}
