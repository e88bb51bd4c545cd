package entity

import "time"

// OrderStatus estado de una orden de servicio (valor persistido).
type OrderStatus string

// Estados de la orden.
const (
	StatusNew          OrderStatus = "NEW"   // Recibido
	StatusInReview     OrderStatus = "REV"   // En revisión
	StatusWaitingParts OrderStatus = "WAI"   // En espera de repuestos
	StatusRequiresAuth OrderStatus = "AUTH"  // Requiere autorización de repuestos
	StatusReadyPickup  OrderStatus = "READY" // Listo para recoger
	StatusDelivered    OrderStatus = "DONE"  // Entregado
	StatusCancelled    OrderStatus = "CANC"  // Cancelado
)

var statusLabels = map[OrderStatus]string{
	StatusNew:          "Recibido",
	StatusInReview:     "En revisión",
	StatusWaitingParts: "En espera de repuestos",
	StatusRequiresAuth: "Requiere autorización",
	StatusReadyPickup:  "Listo para recoger",
	StatusDelivered:    "Entregado",
	StatusCancelled:    "Cancelado",
}

// Valid indica si el código de estado existe.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label nombre legible en español.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsTerminal DONE y CANC.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ServiceOrder orden de servicio. Nunca se borra: es registro contable y de auditoría.
type ServiceOrder struct {
	ID               string
	Folio            string // único, inmutable una vez asignado
	Token            string // identificador público opaco
	CustomerID       string
	DeviceIDs        []string
	Status           OrderStatus
	CheckinAt        time.Time
	CheckoutAt       *time.Time // se fija una sola vez al entrar a DONE
	AssignedTo       string     // técnico asignado (opcional)
	WarrantyParentID string     // orden original si es una garantía
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsWarranty indica si es una orden de garantía (sin cargo).
func (o *ServiceOrder) IsWarranty() bool { return o.WarrantyParentID != "" }

// HasDevice indica si el equipo forma parte de la orden.
func (o *ServiceOrder) HasDevice(deviceID string) bool {
	for _, id := range o.DeviceIDs {
		if id == deviceID {
			return true
		}
	}
	return false
}

// StampCheckout fija CheckoutAt la primera vez; después no lo toca nunca.
func (o *ServiceOrder) StampCheckout(now time.Time) {
	if o.CheckoutAt == nil {
		t := now
		o.CheckoutAt = &t
	}
}
