package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo pagos de órdenes.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create inserta el pago.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, order_id, device_id, amount, method, reference, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.OrderID, nullIfEmpty(p.DeviceID), p.Amount.Decimal(), p.Method, p.Reference,
		nullIfEmpty(p.AuthorID), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListByOrder pagos de la orden en orden cronológico.
func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, COALESCE(device_id::text, ''), amount, method, reference,
			COALESCE(author_id, ''), created_at
		FROM payments WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		var amount decimal.Decimal
		if err := rows.Scan(&p.ID, &p.OrderID, &p.DeviceID, &amount, &p.Method, &p.Reference,
			&p.AuthorID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount = money.New(amount)
		list = append(list, &p)
	}
	return list, rows.Err()
}

// SumByOrder suma de pagos; cero si no hay.
func (r *PaymentRepo) SumByOrder(ctx context.Context, orderID string) (money.Money, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id = $1`, orderID).Scan(&sum)
	if err != nil {
		return money.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return money.New(sum), nil
}
