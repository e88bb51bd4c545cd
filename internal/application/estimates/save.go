package estimates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/estimate"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// ItemInput partida nueva. SKU opcional: si viene, la partida consume inventario.
type ItemInput struct {
	Description string
	Quantity    int
	UnitPrice   money.Money
	SKU         string
}

// SaveInput edición completa de la cotización.
type SaveInput struct {
	OrderID  string
	ApplyTax bool
	Note     string
	Items    []ItemInput
	// Actor si es técnico solo puede cotizar órdenes asignadas a él.
	Actor entity.Actor
}

// SaveEstimate crea la cotización si no existe y reemplaza sus partidas pendientes.
// Las partidas ya aceptadas o rechazadas se conservan intactas; las nuevas entran
// como pendientes después de ellas.
func (uc *UseCase) SaveEstimate(ctx context.Context, in SaveInput) (*entity.Estimate, error) {
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.Description) == "" {
			return nil, domain.Invalid(field+".description", "requerida")
		}
		if it.Quantity <= 0 {
			return nil, domain.Invalid(field+".quantity", "debe ser mayor a cero")
		}
		if it.UnitPrice.IsNegative() {
			return nil, domain.Invalid(field+".unit_price", "no puede ser negativo")
		}
	}

	var out *entity.Estimate
	err := uc.txRunner.RunWorkshop(ctx, func(store repository.Store) error {
		o, err := store.Orders().GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if o.Status.IsTerminal() {
			return domain.Invalid("order", "la orden está cerrada")
		}
		if in.Actor.Capabilities.IsTechnician && !in.Actor.IsAssignedTo(o) {
			return fmt.Errorf("%w: la orden no está asignada al técnico", domain.ErrForbidden)
		}

		now := uc.now()
		est, err := store.Estimates().GetByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		if est == nil {
			est = &entity.Estimate{
				ID:        uuid.New().String(),
				OrderID:   o.ID,
				Status:    entity.EstimatePending,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := store.Estimates().Create(ctx, est); err != nil {
				return err
			}
		} else {
			if est, err = store.Estimates().GetForUpdate(ctx, est.ID); err != nil {
				return err
			}
		}
		if est.InventoryApplied {
			return fmt.Errorf("%w: el inventario de la cotización ya fue aplicado", domain.ErrConflict)
		}

		if err := store.Estimates().DeletePendingItems(ctx, est.ID); err != nil {
			return err
		}
		kept := make([]entity.EstimateItem, 0, len(est.Items)+len(in.Items))
		for _, it := range est.Items {
			if it.IsDecided() {
				kept = append(kept, it)
			}
		}
		pos := 0
		for _, it := range kept {
			if it.Position > pos {
				pos = it.Position
			}
		}
		for i, it := range in.Items {
			item := entity.EstimateItem{
				ID:          uuid.New().String(),
				EstimateID:  est.ID,
				Position:    pos + i + 1,
				Description: strings.TrimSpace(it.Description),
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Status:      entity.DecisionPending,
			}
			if sku := strings.TrimSpace(it.SKU); sku != "" {
				inv, err := store.Items().GetBySKU(ctx, sku)
				if err != nil {
					return err
				}
				if inv == nil {
					return domain.Invalid(fmt.Sprintf("items[%d].sku", i), "SKU inexistente: "+sku)
				}
				item.InventoryItemID = inv.ID
			}
			if err := store.Estimates().CreateItem(ctx, &item); err != nil {
				return err
			}
			kept = append(kept, item)
		}

		est.Items = kept
		est.ApplyTax = in.ApplyTax && !o.IsWarranty()
		est.Note = strings.TrimSpace(in.Note)
		est.UpdatedAt = now
		estimate.Recompute(est, uc.taxRate)
		if err := uc.checkPaid(ctx, store, o, est); err != nil {
			return err
		}
		if err := store.Estimates().Update(ctx, est); err != nil {
			return err
		}
		out = est
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().Str("estimate", out.ID).Str("status", string(out.Status)).Str("total", out.Total.String()).Msg("cotización guardada")
	return out, nil
}

// checkPaid el total aceptado no puede quedar por debajo de lo ya cobrado
// (p. ej. quitar el IVA después de un pago): el saldo sería negativo.
func (uc *UseCase) checkPaid(ctx context.Context, store repository.Store, o *entity.ServiceOrder, est *entity.Estimate) error {
	if o.IsWarranty() {
		return nil
	}
	paid, err := store.Payments().SumByOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	approved := estimate.AcceptedTotals(est.Items, est.ApplyTax, uc.taxRate).Total
	if approved.LessThan(paid) {
		return &domain.BalanceViolationError{
			Balance: approved.Sub(paid).String(),
			Reason:  fmt.Sprintf("la cotización quedaría por debajo de lo pagado (%s)", paid),
		}
	}
	return nil
}
