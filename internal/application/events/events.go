// Package events define los eventos de dominio que emite el núcleo. Son solo
// datos: el núcleo no conoce canales ni plantillas de entrega.
package events

import (
	"time"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

// Nombres de evento.
const (
	NameOrderStatusChanged  = "order.status_changed"
	NameEstimateItemDecided = "estimate.item_decided"
	NamePaymentRecorded     = "payment.recorded"
	NameLowStockReached     = "inventory.low_stock"
)

// Event cualquier evento emitido por el núcleo.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// OrderStatusChanged cambio de estado de una orden.
type OrderStatusChanged struct {
	OrderID   string             `json:"order_id"`
	Folio     string             `json:"folio"`
	Token     string             `json:"token"`
	From      entity.OrderStatus `json:"from"`
	To        entity.OrderStatus `json:"to"`
	ActorID   string             `json:"actor_id,omitempty"`
	ActorRole string             `json:"actor_role"`
	Reason    string             `json:"reason,omitempty"`
	At        time.Time          `json:"at"`
}

func (e OrderStatusChanged) EventName() string     { return NameOrderStatusChanged }
func (e OrderStatusChanged) OccurredAt() time.Time { return e.At }

// EstimateItemDecided decisión final sobre una partida.
type EstimateItemDecided struct {
	EstimateID string          `json:"estimate_id"`
	OrderID    string          `json:"order_id"`
	ItemID     string          `json:"item_id"`
	Decision   entity.Decision `json:"decision"`
	At         time.Time       `json:"at"`
}

func (e EstimateItemDecided) EventName() string     { return NameEstimateItemDecided }
func (e EstimateItemDecided) OccurredAt() time.Time { return e.At }

// PaymentRecorded pago registrado y saldo resultante.
type PaymentRecorded struct {
	OrderID    string      `json:"order_id"`
	Folio      string      `json:"folio"`
	PaymentID  string      `json:"payment_id"`
	Amount     money.Money `json:"amount"`
	NewBalance money.Money `json:"new_balance"`
	At         time.Time   `json:"at"`
}

func (e PaymentRecorded) EventName() string     { return NamePaymentRecorded }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }

// LowStockReached la existencia quedó en o por debajo del mínimo.
type LowStockReached struct {
	ItemID      string    `json:"item_id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Quantity    int       `json:"qty"`
	MinQuantity int       `json:"min_qty"`
	At          time.Time `json:"at"`
}

func (e LowStockReached) EventName() string     { return NameLowStockReached }
func (e LowStockReached) OccurredAt() time.Time { return e.At }
