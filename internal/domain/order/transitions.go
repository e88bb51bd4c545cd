// Package order contiene la tabla de transiciones de la orden de servicio y el
// predicado puro que decide si un cambio de estado es válido.
package order

import (
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

// transitions grafo dirigido de estados permitidos.
var transitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.StatusNew:          {entity.StatusInReview, entity.StatusCancelled},
	entity.StatusInReview:     {entity.StatusWaitingParts, entity.StatusRequiresAuth, entity.StatusReadyPickup, entity.StatusCancelled},
	entity.StatusWaitingParts: {entity.StatusInReview, entity.StatusReadyPickup, entity.StatusCancelled},
	entity.StatusRequiresAuth: {entity.StatusInReview, entity.StatusReadyPickup, entity.StatusCancelled},
	entity.StatusReadyPickup:  {entity.StatusDelivered, entity.StatusCancelled},
	entity.StatusDelivered:    {entity.StatusCancelled},
	entity.StatusCancelled:    nil,
}

// technicianTargets únicos destinos que puede fijar un técnico (y solo en órdenes asignadas).
var technicianTargets = map[entity.OrderStatus]bool{
	entity.StatusInReview:     true,
	entity.StatusWaitingParts: true,
	entity.StatusReadyPickup:  true,
}

// CanReach indica si la tabla permite from → to.
func CanReach(from, to entity.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Targets destinos de la tabla desde from (copia).
func Targets(from entity.OrderStatus) []entity.OrderStatus {
	return append([]entity.OrderStatus(nil), transitions[from]...)
}

// Facts datos que el caller reúne antes de validar. Solo se consultan para DONE.
type Facts struct {
	Balance              money.Money
	OpenWarrantyChildren int
}

// Options modificadores de la transición.
type Options struct {
	// Force transición administrativa: ignora la tabla y el control por rol.
	// Las condiciones de entrega (saldo y garantías abiertas) se evalúan siempre.
	Force bool
	// AllowReopen permite volver de un estado terminal a REV.
	AllowReopen bool
}

// ValidateTransition predicado puro, sin efectos. nil significa permitido.
// Los errores son *domain.InvalidTransitionError o *domain.BalanceViolationError.
func ValidateTransition(o *entity.ServiceOrder, target entity.OrderStatus, actor entity.Actor, opts Options, facts Facts) error {
	from := o.Status
	deny := func(reason string) error {
		return &domain.InvalidTransitionError{From: string(from), To: string(target), Reason: reason}
	}

	if !target.Valid() {
		return deny("estado destino desconocido")
	}
	if target == from {
		return deny("la orden ya está en ese estado")
	}

	if opts.AllowReopen {
		if !from.IsTerminal() {
			return deny("solo se reabren órdenes entregadas o canceladas")
		}
		if target != entity.StatusInReview {
			return deny("la reapertura solo regresa a revisión")
		}
		if !opts.Force && !actor.Capabilities.CanMarkDone {
			return deny("el rol no puede reabrir órdenes")
		}
		return nil
	}

	if !opts.Force {
		if !CanReach(from, target) {
			return deny("transición no definida")
		}
		if actor.Capabilities.IsTechnician {
			if !technicianTargets[target] {
				return deny("un técnico no puede fijar este estado")
			}
			if !actor.IsAssignedTo(o) {
				return deny("la orden no está asignada al técnico")
			}
		}
		if target == entity.StatusCancelled && !actor.Capabilities.CanCancel {
			return deny("cancelar requiere rol de gerencia")
		}
		if target == entity.StatusDelivered && !actor.Capabilities.CanMarkDone {
			return deny("el rol no puede marcar como entregada")
		}
	}

	if target == entity.StatusDelivered {
		if !facts.Balance.IsZero() {
			return &domain.BalanceViolationError{
				Balance: facts.Balance.String(),
				Reason:  "no se puede entregar con saldo pendiente",
			}
		}
		if facts.OpenWarrantyChildren > 0 {
			return deny("tiene órdenes de garantía abiertas")
		}
	}
	return nil
}

// AllowedTargets destinos que el actor podría fijar ahora (sin reabrir ni forzar).
func AllowedTargets(o *entity.ServiceOrder, actor entity.Actor, facts Facts) []entity.OrderStatus {
	var out []entity.OrderStatus
	for _, t := range transitions[o.Status] {
		if ValidateTransition(o, t, actor, Options{}, facts) == nil {
			out = append(out, t)
		}
	}
	return out
}
