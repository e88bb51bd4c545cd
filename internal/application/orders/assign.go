package orders

import (
	"context"
	"strings"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// AssignTechnician fija (o limpia con "") el técnico responsable de la orden.
func (uc *UseCase) AssignTechnician(ctx context.Context, orderID, userID string, actor entity.Actor) (*entity.ServiceOrder, error) {
	if !actor.Capabilities.CanAssign {
		return nil, domain.ErrForbidden
	}
	userID = strings.TrimSpace(userID)
	var out *entity.ServiceOrder
	err := uc.txRunner.RunWorkshop(ctx, func(store repository.Store) error {
		o, err := store.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if o.Status.IsTerminal() {
			return domain.Invalid("status", "la orden está cerrada")
		}
		if err := store.Orders().UpdateAssignment(ctx, o.ID, userID); err != nil {
			return err
		}
		o.AssignedTo = userID
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.WithOrder(out.Folio).Info().Str("tecnico", userID).Str("por", actor.UserID).Msg("orden asignada")
	return out, nil
}
