package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/estimate"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// Ledger situación financiera de una orden.
type Ledger struct {
	Approved money.Money // total de partidas aceptadas (con IVA si aplica)
	Paid     money.Money // suma de pagos
	Balance  money.Money // Approved - Paid, cuantizado half-up
}

// Reconciler calcula aprobado, pagado y saldo. Nada de esto se guarda: se deriva siempre.
type Reconciler struct {
	taxRate decimal.Decimal
}

// NewReconciler construye el calculador con la tasa de IVA configurada.
func NewReconciler(taxRate decimal.Decimal) *Reconciler {
	return &Reconciler{taxRate: taxRate}
}

// TaxRate tasa configurada.
func (r *Reconciler) TaxRate() decimal.Decimal { return r.taxRate }

// ApprovedTotal total aceptado de la cotización; cero si no hay cotización o si
// la orden es una garantía (sin cargo).
func (r *Reconciler) ApprovedTotal(ctx context.Context, store repository.Store, order *entity.ServiceOrder) (money.Money, error) {
	if order.IsWarranty() {
		return money.Zero, nil
	}
	est, err := store.Estimates().GetByOrderID(ctx, order.ID)
	if err != nil {
		return money.Zero, err
	}
	if est == nil {
		return money.Zero, nil
	}
	return estimate.AcceptedTotals(est.Items, est.ApplyTax, r.taxRate).Total, nil
}

// Compute arma el Ledger de la orden.
func (r *Reconciler) Compute(ctx context.Context, store repository.Store, order *entity.ServiceOrder) (Ledger, error) {
	approved, err := r.ApprovedTotal(ctx, store, order)
	if err != nil {
		return Ledger{}, err
	}
	paid, err := store.Payments().SumByOrder(ctx, order.ID)
	if err != nil {
		return Ledger{}, err
	}
	return Ledger{Approved: approved, Paid: paid, Balance: approved.Sub(paid)}, nil
}
