package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// Consumer descuenta del inventario las partidas ligadas a stock de una cotización.
// Se ejecuta una sola vez por cotización (bandera inventory_applied) y es todo o nada.
type Consumer struct {
	now func() time.Time
}

// NewConsumer construye el consumidor.
func NewConsumer() *Consumer {
	return &Consumer{now: time.Now}
}

// ApplyEstimate corre dentro de la transacción del caller. Devuelve applied=true
// solo si en esta llamada se crearon movimientos. Toda partida ligada a un artículo
// consume, sin importar su decisión.
//
// Orden: bloquear cotización, bloquear artículos (por id), verificar TODAS las
// existencias antes de tocar nada, y solo entonces asentar y descontar.
func (c *Consumer) ApplyEstimate(ctx context.Context, store repository.Store, order *entity.ServiceOrder, authorID string, rec *events.Recorder) (bool, error) {
	est, err := store.Estimates().GetByOrderID(ctx, order.ID)
	if err != nil {
		return false, err
	}
	if est == nil {
		return false, nil
	}
	// Releer con bloqueo: dos peticiones repetidas no deben aplicar dos veces.
	est, err = store.Estimates().GetForUpdate(ctx, est.ID)
	if err != nil {
		return false, err
	}
	if est == nil || est.InventoryApplied {
		return false, nil
	}

	var lines []entity.EstimateItem
	requested := map[string]int{}
	for _, it := range est.Items {
		if !it.ConsumesStock() {
			continue
		}
		lines = append(lines, it)
		requested[it.InventoryItemID] += it.Quantity
	}
	if len(lines) == 0 {
		return false, store.Estimates().MarkInventoryApplied(ctx, est.ID)
	}

	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	locked, err := store.Items().LockMany(ctx, ids)
	if err != nil {
		return false, err
	}
	byID := make(map[string]*entity.InventoryItem, len(locked))
	for _, it := range locked {
		byID[it.ID] = it
	}

	var short []string
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			return false, domain.Invalid("inventory_item", "artículo de inventario inexistente: "+id)
		}
		if it.Quantity < requested[id] {
			short = append(short, it.SKU)
		}
	}
	if len(short) > 0 {
		sort.Strings(short)
		return false, &domain.InsufficientStockError{SKUs: short}
	}

	now := c.now()
	reason := entity.ReasonEstimatePrefix + " " + order.Folio
	for _, line := range lines {
		if err := applyMovement(ctx, store, byID[line.InventoryItemID], movement{
			delta:    -line.Quantity,
			reason:   reason,
			orderID:  order.ID,
			authorID: authorID,
			at:       now,
		}, rec); err != nil {
			return false, err
		}
	}
	if err := store.Estimates().MarkInventoryApplied(ctx, est.ID); err != nil {
		return false, err
	}
	return true, nil
}
