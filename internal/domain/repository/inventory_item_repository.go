package repository

import (
	"context"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
)

// InventoryItemRepository artículos de inventario. La cantidad solo cambia vía
// UpdateQuantity, siempre después de insertar el movimiento correspondiente.
type InventoryItemRepository interface {
	// Create devuelve domain.ErrDuplicate si el SKU ya existe.
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error)
	// LockBySKU obtiene y bloquea la fila (SELECT ... FOR UPDATE).
	LockBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error)
	// LockMany bloquea varias filas en orden de id para evitar interbloqueos.
	LockMany(ctx context.Context, ids []string) ([]*entity.InventoryItem, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	// ListLow artículos con quantity <= min_quantity, por SKU.
	ListLow(ctx context.Context) ([]*entity.InventoryItem, error)
	List(ctx context.Context, limit, offset int) ([]*entity.InventoryItem, error)
}
