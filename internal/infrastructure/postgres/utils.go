package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// folioConstraint nombre del índice único sobre service_orders.folio.
const folioConstraint = "service_orders_folio_key"

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isFolioViolation violación única sobre el folio de la orden.
func isFolioViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == folioConstraint
	}
	return false
}

// nullIfEmpty para columnas opcionales (UUID o texto) que guardan NULL en vez de "".
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
