// Package estimates administra la cotización de una orden: edición de partidas
// y registro de las decisiones del cliente.
package estimates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/ports"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

// UseCase casos de uso de cotizaciones.
type UseCase struct {
	txRunner   ports.TxRunner
	store      repository.Store
	dispatcher *events.Dispatcher
	log        *logger.Logger
	taxRate    decimal.Decimal
	now        func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, store repository.Store, dispatcher *events.Dispatcher, log *logger.Logger, taxRate decimal.Decimal) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:   txRunner,
		store:      store,
		dispatcher: dispatcher,
		log:        log,
		taxRate:    taxRate,
		now:        time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// GetByOrder cotización de la orden; ErrNotFound si aún no se ha editado.
func (uc *UseCase) GetByOrder(ctx context.Context, orderID string) (*entity.Estimate, error) {
	est, err := uc.store.Estimates().GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, domain.ErrNotFound
	}
	return est, nil
}

// Get cotización por ID.
func (uc *UseCase) Get(ctx context.Context, estimateID string) (*entity.Estimate, error) {
	est, err := uc.store.Estimates().GetByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, domain.ErrNotFound
	}
	return est, nil
}
