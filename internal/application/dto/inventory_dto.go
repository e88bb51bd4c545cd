package dto

import (
	"time"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
)

// CreateItemRequest alta de artículo.
type CreateItemRequest struct {
	SKU         string `json:"sku" validate:"required,max=60"`
	Name        string `json:"name" validate:"required,max=200"`
	Quantity    int    `json:"quantity" validate:"min=0"`
	MinQuantity int    `json:"min_quantity" validate:"min=0"`
	Location    string `json:"location" validate:"max=100"`
}

// StockMovementRequest entrada o salida manual.
type StockMovementRequest struct {
	SKU      string `json:"sku" validate:"required,max=60"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Reason   string `json:"reason" validate:"max=200"`
}

// InventoryItemResponse artículo.
type InventoryItemResponse struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	Low         bool      `json:"low"`
	Location    string    `json:"location,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemFromEntity convierte el artículo.
func ItemFromEntity(it *entity.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:          it.ID,
		SKU:         it.SKU,
		Name:        it.Name,
		Quantity:    it.Quantity,
		MinQuantity: it.MinQuantity,
		Low:         it.IsLow(),
		Location:    it.Location,
		UpdatedAt:   it.UpdatedAt,
	}
}

// ItemsFromEntities convierte la lista.
func ItemsFromEntities(list []*entity.InventoryItem) []InventoryItemResponse {
	out := make([]InventoryItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, ItemFromEntity(it))
	}
	return out
}
