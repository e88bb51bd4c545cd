package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/ports"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// StockUseCase entradas y salidas manuales, fuera del flujo de cotizaciones.
// Comparte con Consumer el mismo camino de escritura (asiento y luego cantidad).
type StockUseCase struct {
	txRunner   ports.TxRunner
	store      repository.Store
	dispatcher *events.Dispatcher
	now        func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner ports.TxRunner, store repository.Store, dispatcher *events.Dispatcher) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, store: store, dispatcher: dispatcher, now: time.Now}
}

// NewItemInput alta de artículo.
type NewItemInput struct {
	SKU         string
	Name        string
	Quantity    int
	MinQuantity int
	Location    string
	AuthorID    string
}

// CreateItem da de alta el artículo. La existencia inicial entra como movimiento
// para que la cantidad siga siendo la suma del libro.
func (uc *StockUseCase) CreateItem(ctx context.Context, in NewItemInput) (*entity.InventoryItem, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" {
		return nil, domain.Invalid("sku", "requerido")
	}
	if in.Name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if in.Quantity < 0 || in.MinQuantity < 0 {
		return nil, domain.Invalid("quantity", "no puede ser negativa")
	}
	now := uc.now()
	item := &entity.InventoryItem{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		MinQuantity: in.MinQuantity,
		Location:    strings.TrimSpace(in.Location),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	rec := events.NewRecorder()
	err := uc.txRunner.RunWorkshop(ctx, func(store repository.Store) error {
		if err := store.Items().Create(ctx, item); err != nil {
			return err
		}
		if in.Quantity == 0 {
			return nil
		}
		return applyMovement(ctx, store, item, movement{
			delta: in.Quantity, reason: entity.ReasonInitialStock, authorID: in.AuthorID, at: now,
		}, rec)
	})
	if err != nil {
		return nil, err
	}
	uc.dispatcher.Dispatch(ctx, rec)
	return item, nil
}

// MovementInput entrada/salida manual por SKU.
type MovementInput struct {
	SKU      string
	Quantity int
	Reason   string
	AuthorID string
}

// ReceiveStock suma existencia.
func (uc *StockUseCase) ReceiveStock(ctx context.Context, in MovementInput) (*entity.InventoryItem, error) {
	return uc.move(ctx, in, 1, entity.ReasonReceive)
}

// ConsumeStock descuenta existencia; falla con InsufficientStockError si no alcanza.
func (uc *StockUseCase) ConsumeStock(ctx context.Context, in MovementInput) (*entity.InventoryItem, error) {
	return uc.move(ctx, in, -1, entity.ReasonConsume)
}

func (uc *StockUseCase) move(ctx context.Context, in MovementInput, sign int, defaultReason string) (*entity.InventoryItem, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil, domain.Invalid("sku", "requerido")
	}
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity", "debe ser mayor a cero")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = defaultReason
	}

	var item *entity.InventoryItem
	rec := events.NewRecorder()
	err := uc.txRunner.RunWorkshop(ctx, func(store repository.Store) error {
		var err error
		item, err = store.Items().LockBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return applyMovement(ctx, store, item, movement{
			delta: sign * in.Quantity, reason: reason, authorID: in.AuthorID, at: uc.now(),
		}, rec)
	})
	if err != nil {
		return nil, err
	}
	uc.dispatcher.Dispatch(ctx, rec)
	return item, nil
}

// GetBySKU lectura sin bloqueo.
func (uc *StockUseCase) GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	item, err := uc.store.Items().GetBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// Movements libro de movimientos de un artículo, más recientes primero.
func (uc *StockUseCase) Movements(ctx context.Context, sku string, limit, offset int) ([]*entity.InventoryMovement, error) {
	item, err := uc.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return uc.store.Movements().ListByItem(ctx, item.ID, limit, offset)
}
