package entity

import (
	"time"

	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

// Decision decisión del cliente sobre una partida.
type Decision string

const (
	DecisionPending  Decision = "PEN"
	DecisionAccepted Decision = "ACC"
	DecisionRejected Decision = "REJ"
)

// Valid indica si el código existe.
func (d Decision) Valid() bool {
	return d == DecisionPending || d == DecisionAccepted || d == DecisionRejected
}

// IsFinal aceptada o rechazada.
func (d Decision) IsFinal() bool {
	return d == DecisionAccepted || d == DecisionRejected
}

// EstimateStatus estado agregado de la cotización. Siempre derivado de las partidas.
type EstimateStatus string

const (
	EstimatePending        EstimateStatus = "PENDING"
	EstimateClosedAccepted EstimateStatus = "CLOSED_ACCEPTED"
	EstimateClosedRejected EstimateStatus = "CLOSED_REJECTED"
	EstimateClosedPartial  EstimateStatus = "CLOSED_PARTIAL"
)

// Estimate cotización 1:1 con la orden. Subtotal/Tax/Total corresponden a la
// cotización completa y se recalculan en cada edición.
type Estimate struct {
	ID               string
	OrderID          string
	ApplyTax         bool
	InventoryApplied bool
	Status           EstimateStatus
	Subtotal         money.Money
	Tax              money.Money
	Total            money.Money
	Note             string
	Items            []EstimateItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Decisions lista de decisiones de las partidas, en orden.
func (e *Estimate) Decisions() []Decision {
	out := make([]Decision, len(e.Items))
	for i := range e.Items {
		out[i] = e.Items[i].Status
	}
	return out
}

// Item busca una partida por ID.
func (e *Estimate) Item(id string) *EstimateItem {
	for i := range e.Items {
		if e.Items[i].ID == id {
			return &e.Items[i]
		}
	}
	return nil
}

// EstimateItem partida de la cotización.
type EstimateItem struct {
	ID              string
	EstimateID      string
	Position        int
	Description     string
	Quantity        int
	UnitPrice       money.Money
	InventoryItemID string // si no está vacío, la partida consume stock
	Status          Decision
	DecidedAt       *time.Time
}

// LineTotal cantidad × precio unitario.
func (i *EstimateItem) LineTotal() money.Money {
	return i.UnitPrice.MulInt(i.Quantity)
}

// IsDecided la decisión ya es final (DecidedAt fijado).
func (i *EstimateItem) IsDecided() bool {
	return i.DecidedAt != nil || i.Status.IsFinal()
}

// ConsumesStock indica si la partida está ligada a un artículo de inventario.
func (i *EstimateItem) ConsumesStock() bool {
	return i.InventoryItemID != ""
}
