package orders

import (
	"context"
	"errors"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
)

// FolioAttempt genera un folio candidato y trata de persistirlo. Devuelve el
// candidato usado; domain.ErrFolioTaken indica choque con la restricción única.
type FolioAttempt func(ctx context.Context, attempt int) (candidate string, err error)

// AssignFolio reintento optimista acotado: cada intento vuelve a escanear y
// generar. No se mantiene ningún bloqueo entre intentos. Agotados los intentos
// devuelve *domain.IdentityConflictError; cualquier otro error se propaga tal cual.
func AssignFolio(ctx context.Context, attempts int, fn FolioAttempt) (string, error) {
	if attempts <= 0 {
		attempts = DefaultFolioAttempts
	}
	var last string
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate, err := fn(ctx, attempt)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, domain.ErrFolioTaken) {
			return "", err
		}
		last, lastErr = candidate, err
	}
	return "", &domain.IdentityConflictError{Folio: last, Attempts: attempts, Err: lastErr}
}
