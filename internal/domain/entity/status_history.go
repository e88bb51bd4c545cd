package entity

import "time"

// StatusHistory fila inmutable del historial de estados (solo inserción).
type StatusHistory struct {
	ID         string
	OrderID    string
	FromStatus OrderStatus // vacío en la creación
	ToStatus   OrderStatus
	ActorID    string
	ActorRole  string
	Reason     string
	CreatedAt  time.Time
}
