package entity

import "time"

// InventoryItem artículo de inventario. Quantity es siempre la suma de sus movimientos.
type InventoryItem struct {
	ID          string
	SKU         string
	Name        string
	Quantity    int
	MinQuantity int // umbral de alerta de stock bajo
	Location    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLow la existencia está en o por debajo del mínimo.
func (i *InventoryItem) IsLow() bool {
	return i.Quantity <= i.MinQuantity
}
