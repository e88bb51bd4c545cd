package orders

import (
	"context"

	"github.com/jhoicas/Reparaciones-api/internal/application/billing"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/order"
)

// OrderDetail vista completa de una orden.
type OrderDetail struct {
	Order     *entity.ServiceOrder
	History   []*entity.StatusHistory
	Estimate  *entity.Estimate
	Payments  []*entity.Payment
	Movements []*entity.InventoryMovement
	Ledger    billing.Ledger
}

// Get carga la orden con historial, cotización, pagos, movimientos y saldo.
func (uc *UseCase) Get(ctx context.Context, orderID string) (*OrderDetail, error) {
	o, err := uc.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return uc.detail(ctx, o)
}

// GetByToken consulta pública por token de seguimiento.
func (uc *UseCase) GetByToken(ctx context.Context, token string) (*OrderDetail, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	o, err := uc.store.Orders().GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return uc.detail(ctx, o)
}

func (uc *UseCase) detail(ctx context.Context, o *entity.ServiceOrder) (*OrderDetail, error) {
	d := &OrderDetail{Order: o}
	var err error
	if d.History, err = uc.store.History().ListByOrder(ctx, o.ID); err != nil {
		return nil, err
	}
	if d.Estimate, err = uc.store.Estimates().GetByOrderID(ctx, o.ID); err != nil {
		return nil, err
	}
	if d.Payments, err = uc.store.Payments().ListByOrder(ctx, o.ID); err != nil {
		return nil, err
	}
	if d.Movements, err = uc.store.Movements().ListByOrder(ctx, o.ID); err != nil {
		return nil, err
	}
	if d.Ledger, err = uc.reconciler.Compute(ctx, uc.store, o); err != nil {
		return nil, err
	}
	return d, nil
}

// AllowedTargets estados a los que el actor puede mover la orden en este momento.
func (uc *UseCase) AllowedTargets(ctx context.Context, orderID string, actor entity.Actor) ([]entity.OrderStatus, error) {
	o, err := uc.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	facts, err := uc.facts(ctx, uc.store, o, entity.StatusDelivered)
	if err != nil {
		return nil, err
	}
	return order.AllowedTargets(o, actor, facts), nil
}
