package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// CreateWarrantyOrder abre una orden de garantía sobre una orden entregada.
// La hija hereda cliente, equipos y técnico; nace en NEW con folio propio y sin cargo.
// Mientras siga abierta la madre no puede volver a marcarse como entregada.
func (uc *UseCase) CreateWarrantyOrder(ctx context.Context, parentID string, actor entity.Actor, notes string) (*entity.ServiceOrder, error) {
	if !actor.Capabilities.CanMarkDone {
		return nil, domain.ErrForbidden
	}
	parent, err := uc.store.Orders().GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now()
	child := &entity.ServiceOrder{
		ID:               uuid.New().String(),
		Token:            uuid.New().String(),
		CustomerID:       parent.CustomerID,
		DeviceIDs:        append([]string(nil), parent.DeviceIDs...),
		Status:           entity.StatusNew,
		CheckinAt:        now,
		AssignedTo:       parent.AssignedTo,
		WarrantyParentID: parent.ID,
		Notes:            strings.TrimSpace(notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = uc.insertWithFolio(ctx, child, actor, func(ctx context.Context, store repository.Store) error {
		locked, err := store.Orders().GetForUpdate(ctx, parentID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if locked.Status != entity.StatusDelivered {
			return domain.Invalid("parent", "solo se abre garantía sobre órdenes entregadas")
		}
		if locked.IsWarranty() {
			return domain.Invalid("parent", "una garantía no puede tener garantía")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}
