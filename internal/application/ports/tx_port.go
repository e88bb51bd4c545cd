package ports

import (
	"context"

	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción ACID, pasando un Store cuyos
// repositorios están atados a esa transacción. Commit si fn devuelve nil,
// Rollback en cualquier otro caso.
type TxRunner interface {
	RunWorkshop(ctx context.Context, fn func(store repository.Store) error) error
}
