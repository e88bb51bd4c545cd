package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/estimate"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

// EstimateItemRequest partida nueva. unit_price como string decimal.
type EstimateItemRequest struct {
	Description string `json:"description" validate:"required,max=500"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	UnitPrice   string `json:"unit_price" validate:"required"`
	SKU         string `json:"sku" validate:"max=60"`
}

// SaveEstimateRequest reemplazo de las partidas pendientes.
type SaveEstimateRequest struct {
	ApplyTax bool                  `json:"apply_tax"`
	Note     string                `json:"note" validate:"max=1000"`
	Items    []EstimateItemRequest `json:"items" validate:"dive"`
}

// DecisionRequest decisión sobre una partida.
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=ACC REJ"`
}

// FinalizeDecisionsRequest item_id -> ACC|REJ para todas las pendientes.
type FinalizeDecisionsRequest struct {
	Decisions map[string]string `json:"decisions" validate:"required,min=1,dive,keys,required,endkeys,oneof=ACC REJ"`
}

// TotalsResponse subtotal, IVA y total.
type TotalsResponse struct {
	Subtotal money.Money `json:"subtotal"`
	Tax      money.Money `json:"tax"`
	Total    money.Money `json:"total"`
}

// EstimateItemResponse partida.
type EstimateItemResponse struct {
	ID              string      `json:"id"`
	Position        int         `json:"position"`
	Description     string      `json:"description"`
	Quantity        int         `json:"quantity"`
	UnitPrice       money.Money `json:"unit_price"`
	LineTotal       money.Money `json:"line_total"`
	InventoryItemID string      `json:"inventory_item_id,omitempty"`
	Decision        string      `json:"decision"`
	DecidedAt       *time.Time  `json:"decided_at,omitempty"`
}

// EstimateResponse cotización con totales de la cotización completa y de lo aceptado.
type EstimateResponse struct {
	ID               string                 `json:"id"`
	OrderID          string                 `json:"order_id"`
	Status           string                 `json:"status"`
	ApplyTax         bool                   `json:"apply_tax"`
	InventoryApplied bool                   `json:"inventory_applied"`
	Quote            TotalsResponse         `json:"quote"`
	Accepted         TotalsResponse         `json:"accepted"`
	Note             string                 `json:"note,omitempty"`
	Items            []EstimateItemResponse `json:"items"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// PublicEstimateResponse partidas y totales para el cliente.
type PublicEstimateResponse struct {
	Status   string                 `json:"status"`
	Items    []EstimateItemResponse `json:"items"`
	Quote    TotalsResponse         `json:"quote"`
	Accepted TotalsResponse         `json:"accepted"`
}

func totalsResponse(t estimate.Totals) TotalsResponse {
	return TotalsResponse{Subtotal: t.Subtotal, Tax: t.Tax, Total: t.Total}
}

// EstimateFromEntity convierte la cotización; rate es la tasa de IVA vigente.
func EstimateFromEntity(e *entity.Estimate, rate decimal.Decimal) *EstimateResponse {
	if e == nil {
		return nil
	}
	items := make([]EstimateItemResponse, 0, len(e.Items))
	for i := range e.Items {
		it := &e.Items[i]
		items = append(items, EstimateItemResponse{
			ID:              it.ID,
			Position:        it.Position,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			LineTotal:       it.LineTotal(),
			InventoryItemID: it.InventoryItemID,
			Decision:        string(it.Status),
			DecidedAt:       it.DecidedAt,
		})
	}
	return &EstimateResponse{
		ID:               e.ID,
		OrderID:          e.OrderID,
		Status:           string(e.Status),
		ApplyTax:         e.ApplyTax,
		InventoryApplied: e.InventoryApplied,
		Quote:            TotalsResponse{Subtotal: e.Subtotal, Tax: e.Tax, Total: e.Total},
		Accepted:         totalsResponse(estimate.AcceptedTotals(e.Items, e.ApplyTax, rate)),
		Note:             e.Note,
		Items:            items,
		UpdatedAt:        e.UpdatedAt,
	}
}

// PublicEstimateFromEntity versión pública (sin ids de inventario).
func PublicEstimateFromEntity(e *entity.Estimate, rate decimal.Decimal) *PublicEstimateResponse {
	full := EstimateFromEntity(e, rate)
	if full == nil {
		return nil
	}
	for i := range full.Items {
		full.Items[i].InventoryItemID = ""
	}
	return &PublicEstimateResponse{Status: full.Status, Items: full.Items, Quote: full.Quote, Accepted: full.Accepted}
}
