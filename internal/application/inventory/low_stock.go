package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// LowStockUseCase barrido periódico de artículos en o por debajo del mínimo.
type LowStockUseCase struct {
	store      repository.Store
	dispatcher *events.Dispatcher
	now        func() time.Time
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(store repository.Store, dispatcher *events.Dispatcher) *LowStockUseCase {
	return &LowStockUseCase{store: store, dispatcher: dispatcher, now: time.Now}
}

// List artículos bajos sin emitir eventos.
func (uc *LowStockUseCase) List(ctx context.Context) ([]*entity.InventoryItem, error) {
	return uc.store.Items().ListLow(ctx)
}

// Sweep emite LowStockReached por cada artículo bajo y devuelve la lista.
func (uc *LowStockUseCase) Sweep(ctx context.Context) ([]*entity.InventoryItem, error) {
	items, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	rec := events.NewRecorder()
	now := uc.now()
	for _, it := range items {
		rec.Record(events.LowStockReached{
			ItemID:      it.ID,
			SKU:         it.SKU,
			Name:        it.Name,
			Quantity:    it.Quantity,
			MinQuantity: it.MinQuantity,
			At:          now,
		})
	}
	uc.dispatcher.Dispatch(ctx, rec)
	return items, nil
}
