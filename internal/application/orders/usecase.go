// Package orders orquesta el ciclo de vida de la orden de servicio: alta con
// folio, máquina de estados, reapertura, cancelación, garantías y asignación.
package orders

import (
	"time"

	"github.com/jhoicas/Reparaciones-api/internal/application/billing"
	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/inventory"
	"github.com/jhoicas/Reparaciones-api/internal/application/ports"
	"github.com/jhoicas/Reparaciones-api/internal/domain/folio"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

// DefaultFolioAttempts reintentos de asignación de folio.
const DefaultFolioAttempts = 3

// Config parámetros del taller que afectan a las órdenes.
type Config struct {
	FolioPrefix   string
	FolioAttempts int
	Location      *time.Location // año del folio según zona horaria local
}

// UseCase casos de uso de órdenes.
type UseCase struct {
	txRunner   ports.TxRunner
	store      repository.Store
	reconciler *billing.Reconciler
	consumer   *inventory.Consumer
	dispatcher *events.Dispatcher
	log        *logger.Logger
	cfg        Config
	now        func() time.Time
}

var _ billing.OrderCloser = (*UseCase)(nil)

// NewUseCase construye el caso de uso aplicando valores por defecto a cfg.
func NewUseCase(
	txRunner ports.TxRunner,
	store repository.Store,
	reconciler *billing.Reconciler,
	consumer *inventory.Consumer,
	dispatcher *events.Dispatcher,
	log *logger.Logger,
	cfg Config,
) *UseCase {
	if cfg.FolioPrefix == "" {
		cfg.FolioPrefix = folio.DefaultPrefix
	}
	if cfg.FolioAttempts <= 0 {
		cfg.FolioAttempts = DefaultFolioAttempts
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:   txRunner,
		store:      store,
		reconciler: reconciler,
		consumer:   consumer,
		dispatcher: dispatcher,
		log:        log,
		cfg:        cfg,
		now:        time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }
