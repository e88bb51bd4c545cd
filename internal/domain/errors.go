package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrBalance           = errors.New("saldo inconsistente")
	ErrDecisionFinal     = errors.New("la partida ya tiene una decisión final")
	ErrIdentityConflict  = errors.New("no se pudo asignar un folio único")

	// ErrFolioTaken lo devuelve la persistencia cuando el folio choca con la restricción única.
	ErrFolioTaken = errors.New("folio ya asignado")
)

// ValidationError entrada mal formada; se devuelve tal cual al caller, nunca se reintenta.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid atajo para construir un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidTransitionError destino no alcanzable o rol sin capacidad. La orden no cambia.
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("no se puede pasar de %s a %s: %s", e.From, e.To, e.Reason)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// InsufficientStockError nombra todos los SKU sin existencia suficiente.
type InsufficientStockError struct {
	SKUs []string
}

func (e *InsufficientStockError) Error() string {
	return "Stock insuficiente para: " + strings.Join(e.SKUs, ", ")
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// BalanceViolationError pago mayor al saldo, sin saldo pendiente, o entrega con saldo.
type BalanceViolationError struct {
	Balance string
	Amount  string
	Reason  string
}

func (e *BalanceViolationError) Error() string {
	if e.Amount == "" {
		return fmt.Sprintf("%s (saldo %s)", e.Reason, e.Balance)
	}
	return fmt.Sprintf("%s (saldo %s, importe %s)", e.Reason, e.Balance, e.Amount)
}

func (e *BalanceViolationError) Unwrap() error { return ErrBalance }

// DecisionFinalError la partida ya fue aceptada o rechazada.
type DecisionFinalError struct {
	ItemID string
}

func (e *DecisionFinalError) Error() string {
	return fmt.Sprintf("partida %s: %s", e.ItemID, ErrDecisionFinal.Error())
}

func (e *DecisionFinalError) Unwrap() error { return ErrDecisionFinal }

// IdentityConflictError se agotaron los reintentos de folio. Es un error operativo.
type IdentityConflictError struct {
	Folio    string
	Attempts int
	Err      error
}

func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("%s tras %d intentos (último candidato %s): %v", ErrIdentityConflict.Error(), e.Attempts, e.Folio, e.Err)
}

func (e *IdentityConflictError) Unwrap() []error { return []error{ErrIdentityConflict, e.Err} }
