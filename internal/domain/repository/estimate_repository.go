package repository

import (
	"context"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
)

// EstimateRepository puerto de persistencia de cotizaciones y sus partidas.
// Las lecturas devuelven la cotización con Items cargados, ordenados por posición.
type EstimateRepository interface {
	Create(ctx context.Context, estimate *entity.Estimate) error
	GetByID(ctx context.Context, id string) (*entity.Estimate, error)
	GetByOrderID(ctx context.Context, orderID string) (*entity.Estimate, error)
	// GetForUpdate bloquea la cabecera de la cotización.
	GetForUpdate(ctx context.Context, id string) (*entity.Estimate, error)
	// Update persiste la cabecera (totales, estado, apply_tax, nota, inventory_applied).
	Update(ctx context.Context, estimate *entity.Estimate) error
	// DeletePendingItems borra solo las partidas sin decisión final.
	DeletePendingItems(ctx context.Context, estimateID string) error
	CreateItem(ctx context.Context, item *entity.EstimateItem) error
	// UpdateItemDecision persiste status y decided_at de la partida.
	UpdateItemDecision(ctx context.Context, item *entity.EstimateItem) error
	MarkInventoryApplied(ctx context.Context, estimateID string) error
}
