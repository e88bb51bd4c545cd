package dto

import (
	"time"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

// CustomerRequest cliente existente (id) o alta nueva (name + phone/email).
type CustomerRequest struct {
	ID       string `json:"id" validate:"omitempty,uuid"`
	Name     string `json:"name" validate:"required_without=ID,max=200"`
	Phone    string `json:"phone" validate:"max=40"`
	AltPhone string `json:"alt_phone" validate:"max=40"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// DeviceRequest equipo existente (id) o alta nueva.
type DeviceRequest struct {
	ID             string `json:"id" validate:"omitempty,uuid"`
	Brand          string `json:"brand" validate:"max=100"`
	Model          string `json:"model" validate:"max=100"`
	Serial         string `json:"serial" validate:"max=100"`
	Notes          string `json:"notes"`
	PasswordNotes  string `json:"password_notes"`
	AccessoryNotes string `json:"accessory_notes"`
}

// CreateOrderRequest alta de orden en recepción.
type CreateOrderRequest struct {
	Customer   CustomerRequest `json:"customer" validate:"required"`
	Devices    []DeviceRequest `json:"devices" validate:"required,min=1,dive"`
	AssignedTo string          `json:"assigned_to"`
	Notes      string          `json:"notes"`
}

// TransitionRequest cambio de estado. force solo para gerencia.
type TransitionRequest struct {
	Target string `json:"target" validate:"required,oneof=NEW REV WAI AUTH READY DONE CANC"`
	Reason string `json:"reason" validate:"max=500"`
	Force  bool   `json:"force"`
}

// ReasonRequest motivo libre (reapertura, cancelación).
type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// AssignRequest técnico a asignar ("" para liberar).
type AssignRequest struct {
	UserID string `json:"user_id"`
}

// WarrantyRequest alta de garantía.
type WarrantyRequest struct {
	Notes string `json:"notes"`
}

// OrderResponse orden para el personal del taller.
type OrderResponse struct {
	ID               string     `json:"id"`
	Folio            string     `json:"folio"`
	Token            string     `json:"token"`
	CustomerID       string     `json:"customer_id"`
	DeviceIDs        []string   `json:"device_ids"`
	Status           string     `json:"status"`
	StatusLabel      string     `json:"status_label"`
	CheckinAt        time.Time  `json:"checkin_at"`
	CheckoutAt       *time.Time `json:"checkout_at,omitempty"`
	AssignedTo       string     `json:"assigned_to,omitempty"`
	WarrantyParentID string     `json:"warranty_parent_id,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// HistoryResponse fila del historial.
type HistoryResponse struct {
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	ActorID   string    `json:"actor_id,omitempty"`
	ActorRole string    `json:"actor_role"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// PaymentRequest abono a la orden. amount como string decimal ("150.00").
type PaymentRequest struct {
	Amount    string `json:"amount" validate:"required"`
	DeviceID  string `json:"device_id" validate:"omitempty,uuid"`
	Method    string `json:"method" validate:"required,max=40"`
	Reference string `json:"reference" validate:"max=100"`
}

// PaymentResponse pago registrado.
type PaymentResponse struct {
	ID        string      `json:"id"`
	DeviceID  string      `json:"device_id,omitempty"`
	Amount    money.Money `json:"amount"`
	Method    string      `json:"method"`
	Reference string      `json:"reference,omitempty"`
	AuthorID  string      `json:"author_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// LedgerResponse aprobado, pagado y saldo.
type LedgerResponse struct {
	Approved money.Money       `json:"approved"`
	Paid     money.Money       `json:"paid"`
	Balance  money.Money       `json:"balance"`
	Payments []PaymentResponse `json:"payments,omitempty"`
}

// PaymentResultResponse resultado de AddPayment.
type PaymentResultResponse struct {
	Payment          PaymentResponse `json:"payment"`
	Ledger           LedgerResponse  `json:"ledger"`
	Status           string          `json:"status"`
	AutoClosed       bool            `json:"auto_closed"`
	AutoCloseBlocked string          `json:"auto_close_blocked,omitempty"`
}

// MovementResponse asiento de inventario.
type MovementResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	OrderID   string    `json:"order_id,omitempty"`
	AuthorID  string    `json:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderDetailResponse vista interna completa.
type OrderDetailResponse struct {
	Order          OrderResponse      `json:"order"`
	History        []HistoryResponse  `json:"history"`
	Estimate       *EstimateResponse  `json:"estimate,omitempty"`
	Ledger         LedgerResponse     `json:"ledger"`
	Movements      []MovementResponse `json:"movements,omitempty"`
	AllowedTargets []string           `json:"allowed_targets"`
}

// PublicOrderResponse lo que ve el cliente con su token: sin importes internos ni actores.
type PublicOrderResponse struct {
	Folio       string                  `json:"folio"`
	Status      string                  `json:"status"`
	StatusLabel string                  `json:"status_label"`
	CheckinAt   time.Time               `json:"checkin_at"`
	CheckoutAt  *time.Time              `json:"checkout_at,omitempty"`
	Timeline    []PublicTimelineEntry   `json:"timeline"`
	Estimate    *PublicEstimateResponse `json:"estimate,omitempty"`
	Balance     money.Money             `json:"balance"`
}

// PublicTimelineEntry paso del historial visible al cliente.
type PublicTimelineEntry struct {
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	At          time.Time `json:"at"`
}

// OrderFromEntity convierte la entidad.
func OrderFromEntity(o *entity.ServiceOrder) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		Folio:            o.Folio,
		Token:            o.Token,
		CustomerID:       o.CustomerID,
		DeviceIDs:        o.DeviceIDs,
		Status:           string(o.Status),
		StatusLabel:      o.Status.Label(),
		CheckinAt:        o.CheckinAt,
		CheckoutAt:       o.CheckoutAt,
		AssignedTo:       o.AssignedTo,
		WarrantyParentID: o.WarrantyParentID,
		Notes:            o.Notes,
	}
}

// HistoryFromEntities convierte el historial.
func HistoryFromEntities(list []*entity.StatusHistory) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(list))
	for _, h := range list {
		out = append(out, HistoryResponse{
			From:      string(h.FromStatus),
			To:        string(h.ToStatus),
			ActorID:   h.ActorID,
			ActorRole: h.ActorRole,
			Reason:    h.Reason,
			At:        h.CreatedAt,
		})
	}
	return out
}

// PaymentFromEntity convierte un pago.
func PaymentFromEntity(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		DeviceID:  p.DeviceID,
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
	}
}

// PaymentsFromEntities convierte la lista de pagos.
func PaymentsFromEntities(list []*entity.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, PaymentFromEntity(p))
	}
	return out
}

// MovementsFromEntities convierte los asientos.
func MovementsFromEntities(list []*entity.InventoryMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementResponse{
			ID:        m.ID,
			ItemID:    m.ItemID,
			Delta:     m.Delta,
			Reason:    m.Reason,
			OrderID:   m.OrderID,
			AuthorID:  m.AuthorID,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

// StatusesToStrings códigos de estado como strings.
func StatusesToStrings(list []entity.OrderStatus) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, string(s))
	}
	return out
}
