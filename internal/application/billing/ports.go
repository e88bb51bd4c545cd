package billing

import (
	"context"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// OrderCloser integra la conciliación con la máquina de estados.
// CloseInTx pasa la orden a DONE usando el store del caller (misma transacción).
// Si retorna error de transición, el pago sigue siendo válido y el caller decide.
type OrderCloser interface {
	CloseInTx(
		ctx context.Context,
		store repository.Store,
		order *entity.ServiceOrder,
		actor entity.Actor,
		reason string,
		rec *events.Recorder,
	) error
}
