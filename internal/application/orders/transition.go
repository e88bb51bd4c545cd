package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/order"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

const reopenPrefix = "Reapertura: "

// TransitionRequest cambio de estado solicitado.
type TransitionRequest struct {
	Target      entity.OrderStatus
	Actor       entity.Actor
	Reason      string
	Force       bool // administrativa: ignora tabla y rol
	AllowReopen bool // terminal -> REV
}

// facts reúne saldo y garantías abiertas; solo hacen falta para DONE.
func (uc *UseCase) facts(ctx context.Context, store repository.Store, o *entity.ServiceOrder, target entity.OrderStatus) (order.Facts, error) {
	if target != entity.StatusDelivered {
		return order.Facts{}, nil
	}
	ledger, err := uc.reconciler.Compute(ctx, store, o)
	if err != nil {
		return order.Facts{}, err
	}
	open, err := store.Orders().CountOpenWarrantyChildren(ctx, o.ID)
	if err != nil {
		return order.Facts{}, err
	}
	return order.Facts{Balance: ledger.Balance, OpenWarrantyChildren: open}, nil
}

// ValidateTransition verificación previa sin efectos; no bloquea la orden.
func (uc *UseCase) ValidateTransition(ctx context.Context, orderID string, req TransitionRequest) error {
	o, err := uc.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return domain.ErrNotFound
	}
	facts, err := uc.facts(ctx, uc.store, o, req.Target)
	if err != nil {
		return err
	}
	return order.ValidateTransition(o, req.Target, req.Actor, order.Options{Force: req.Force, AllowReopen: req.AllowReopen}, facts)
}

// TransitionStatus bloquea la orden, revalida y aplica el cambio en una sola transacción.
// Los rechazos de negocio vuelven como error tipado; la orden queda sin cambios.
func (uc *UseCase) TransitionStatus(ctx context.Context, orderID string, req TransitionRequest) (*entity.ServiceOrder, error) {
	var out *entity.ServiceOrder
	rec := events.NewRecorder()
	err := uc.txRunner.RunWorkshop(ctx, func(store repository.Store) error {
		o, err := store.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if err := uc.transitionInTx(ctx, store, o, req, rec); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.dispatcher.Dispatch(ctx, rec)
	return out, nil
}

// Reopen regresa una orden terminal a REV. El motivo es obligatorio y queda en el historial.
func (uc *UseCase) Reopen(ctx context.Context, orderID string, actor entity.Actor, reason string) (*entity.ServiceOrder, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Invalid("reason", "la reapertura requiere un motivo")
	}
	return uc.TransitionStatus(ctx, orderID, TransitionRequest{
		Target:      entity.StatusInReview,
		Actor:       actor,
		Reason:      reason,
		AllowReopen: true,
	})
}

// Cancel pasa la orden a CANC (requiere rol de gerencia).
func (uc *UseCase) Cancel(ctx context.Context, orderID string, actor entity.Actor, reason string) (*entity.ServiceOrder, error) {
	return uc.TransitionStatus(ctx, orderID, TransitionRequest{
		Target: entity.StatusCancelled,
		Actor:  actor,
		Reason: strings.TrimSpace(reason),
	})
}

// ForceStatus transición administrativa fuera de la tabla. Solo gerencia, con motivo.
func (uc *UseCase) ForceStatus(ctx context.Context, orderID string, target entity.OrderStatus, actor entity.Actor, reason string) (*entity.ServiceOrder, error) {
	if !actor.Capabilities.CanCancel {
		return nil, domain.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Invalid("reason", "una transición forzada requiere motivo")
	}
	return uc.TransitionStatus(ctx, orderID, TransitionRequest{
		Target: target,
		Actor:  actor,
		Reason: reason,
		Force:  true,
	})
}

// CloseInTx implementa billing.OrderCloser: cierre automático a DONE por saldo liquidado.
func (uc *UseCase) CloseInTx(ctx context.Context, store repository.Store, o *entity.ServiceOrder, actor entity.Actor, reason string, rec *events.Recorder) error {
	return uc.transitionInTx(ctx, store, o, TransitionRequest{
		Target: entity.StatusDelivered,
		Actor:  actor,
		Reason: reason,
		Force:  true,
	}, rec)
}

// transitionInTx núcleo de la máquina de estados. o debe estar bloqueada por el caller.
// Al entrar a READY se consume inventario antes de tocar el estado; si no hay
// stock, se aborta todo y la orden conserva su estado.
func (uc *UseCase) transitionInTx(ctx context.Context, store repository.Store, o *entity.ServiceOrder, req TransitionRequest, rec *events.Recorder) error {
	facts, err := uc.facts(ctx, store, o, req.Target)
	if err != nil {
		return err
	}
	opts := order.Options{Force: req.Force, AllowReopen: req.AllowReopen}
	if err := order.ValidateTransition(o, req.Target, req.Actor, opts, facts); err != nil {
		return err
	}

	if req.Target == entity.StatusReadyPickup {
		if _, err := uc.consumer.ApplyEstimate(ctx, store, o, req.Actor.UserID, rec); err != nil {
			return err
		}
	}

	now := uc.now()
	from := o.Status
	next := *o
	next.Status = req.Target
	next.UpdatedAt = now
	if req.Target == entity.StatusDelivered {
		next.StampCheckout(now)
	}
	if err := store.Orders().UpdateStatus(ctx, &next); err != nil {
		return err
	}

	reason := req.Reason
	if req.AllowReopen {
		reason = reopenPrefix + reason
	}
	if err := store.History().Append(ctx, &entity.StatusHistory{
		ID:         uuid.New().String(),
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   req.Target,
		ActorID:    req.Actor.UserID,
		ActorRole:  req.Actor.RoleLabel(),
		Reason:     reason,
		CreatedAt:  now,
	}); err != nil {
		return err
	}
	*o = next

	rec.Record(events.OrderStatusChanged{
		OrderID:   o.ID,
		Folio:     o.Folio,
		Token:     o.Token,
		From:      from,
		To:        req.Target,
		ActorID:   req.Actor.UserID,
		ActorRole: req.Actor.RoleLabel(),
		Reason:    reason,
		At:        now,
	})
	uc.log.WithOrder(o.Folio).Info().
		Str("from", string(from)).Str("to", string(req.Target)).Str("role", req.Actor.RoleLabel()).
		Msg("cambio de estado")
	return nil
}
