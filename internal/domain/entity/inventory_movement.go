package entity

import "time"

// Motivos estándar de movimiento.
const (
	ReasonReceive        = "Entrada manual"
	ReasonConsume        = "Salida manual"
	ReasonEstimatePrefix = "Consumo cotización"
	ReasonInitialStock   = "Existencia inicial"
)

// InventoryMovement asiento del libro de movimientos (solo inserción). Delta nunca es cero.
type InventoryMovement struct {
	ID        string
	ItemID    string
	Delta     int // positivo entrada, negativo salida
	Reason    string
	OrderID   string // orden que originó el consumo (opcional)
	AuthorID  string
	CreatedAt time.Time
}
