package entity

import (
	"time"

	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

// Payment abono a una orden. Inmutable; los pagos parciales se acumulan.
type Payment struct {
	ID        string
	OrderID   string
	DeviceID  string // opcional, para órdenes con varios equipos
	Amount    money.Money
	Method    string
	Reference string
	AuthorID  string
	CreatedAt time.Time
}
