package repository

import (
	"context"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
)

// ServiceOrderRepository puerto de persistencia de órdenes. Las órdenes nunca se borran.
type ServiceOrderRepository interface {
	// Create inserta la orden y sus equipos. Devuelve domain.ErrFolioTaken si el
	// folio choca con la restricción única.
	Create(ctx context.Context, order *entity.ServiceOrder) error
	GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error)
	// GetForUpdate bloquea la fila de la orden hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error)
	GetByToken(ctx context.Context, token string) (*entity.ServiceOrder, error)
	// UpdateStatus persiste status, checkout_at y updated_at.
	UpdateStatus(ctx context.Context, order *entity.ServiceOrder) error
	UpdateAssignment(ctx context.Context, orderID, userID string) error
	// ListFoliosBySuffix folios que terminan en suffix (p. ej. "-2025").
	ListFoliosBySuffix(ctx context.Context, suffix string) ([]string, error)
	// CountOpenWarrantyChildren órdenes de garantía no terminales que apuntan a parentID.
	CountOpenWarrantyChildren(ctx context.Context, parentID string) (int, error)
}

// StatusHistoryRepository historial de estados, solo inserción.
type StatusHistoryRepository interface {
	Append(ctx context.Context, entry *entity.StatusHistory) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.StatusHistory, error)
}
