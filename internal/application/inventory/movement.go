package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// movement datos de un asiento contra un artículo ya bloqueado.
type movement struct {
	delta    int
	reason   string
	orderID  string
	authorID string
	at       time.Time
}

// applyMovement único camino de escritura de la existencia: primero el asiento
// en el libro, después la cantidad. El caller debe tener la fila bloqueada
// dentro de la transacción.
func applyMovement(ctx context.Context, store repository.Store, item *entity.InventoryItem, m movement, rec *events.Recorder) error {
	if m.delta == 0 {
		return domain.Invalid("quantity", "el movimiento no puede ser cero")
	}
	newQty := item.Quantity + m.delta
	if newQty < 0 {
		return &domain.InsufficientStockError{SKUs: []string{item.SKU}}
	}
	mov := &entity.InventoryMovement{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		Delta:     m.delta,
		Reason:    m.reason,
		OrderID:   m.orderID,
		AuthorID:  m.authorID,
		CreatedAt: m.at,
	}
	if err := store.Movements().Create(ctx, mov); err != nil {
		return err
	}
	if err := store.Items().UpdateQuantity(ctx, item.ID, newQty); err != nil {
		return err
	}
	item.Quantity = newQty
	item.UpdatedAt = m.at
	if item.IsLow() {
		rec.Record(events.LowStockReached{
			ItemID:      item.ID,
			SKU:         item.SKU,
			Name:        item.Name,
			Quantity:    item.Quantity,
			MinQuantity: item.MinQuantity,
			At:          m.at,
		})
	}
	return nil
}
