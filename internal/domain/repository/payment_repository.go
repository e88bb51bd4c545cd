package repository

import (
	"context"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

// PaymentRepository pagos de una orden (inmutables).
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Payment, error)
	SumByOrder(ctx context.Context, orderID string) (money.Money, error)
}
