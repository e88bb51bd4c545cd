package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

var _ repository.EstimateRepository = (*EstimateRepo)(nil)

// EstimateRepo cotizaciones y partidas.
type EstimateRepo struct {
	q Querier
}

// NewEstimateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEstimateRepository(q Querier) *EstimateRepo {
	return &EstimateRepo{q: q}
}

const estimateColumns = `id, order_id, apply_tax, inventory_applied, status, subtotal, tax, total, note, created_at, updated_at`

func (r *EstimateRepo) getOne(ctx context.Context, query string, arg any) (*entity.Estimate, error) {
	var e entity.Estimate
	var status string
	var subtotal, tax, total decimal.Decimal
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&e.ID, &e.OrderID, &e.ApplyTax, &e.InventoryApplied, &status,
		&subtotal, &tax, &total, &e.Note, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get estimate: %w", err)
	}
	e.Status = entity.EstimateStatus(status)
	e.Subtotal, e.Tax, e.Total = money.New(subtotal), money.New(tax), money.New(total)
	if e.Items, err = r.listItems(ctx, e.ID); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EstimateRepo) listItems(ctx context.Context, estimateID string) ([]entity.EstimateItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, estimate_id, position, description, quantity, unit_price,
			COALESCE(inventory_item_id::text, ''), status, decided_at
		FROM estimate_items WHERE estimate_id = $1 ORDER BY position`, estimateID)
	if err != nil {
		return nil, fmt.Errorf("list estimate items: %w", err)
	}
	defer rows.Close()
	var items []entity.EstimateItem
	for rows.Next() {
		var it entity.EstimateItem
		var price decimal.Decimal
		var status string
		if err := rows.Scan(&it.ID, &it.EstimateID, &it.Position, &it.Description, &it.Quantity, &price,
			&it.InventoryItemID, &status, &it.DecidedAt); err != nil {
			return nil, fmt.Errorf("scan estimate item: %w", err)
		}
		it.UnitPrice = money.New(price)
		it.Status = entity.Decision(status)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserta la cabecera (sin partidas).
func (r *EstimateRepo) Create(ctx context.Context, e *entity.Estimate) error {
	query := `INSERT INTO estimates (` + estimateColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.OrderID, e.ApplyTax, e.InventoryApplied, string(e.Status),
		e.Subtotal.Decimal(), e.Tax.Decimal(), e.Total.Decimal(), e.Note, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

// GetByID cotización con partidas.
func (r *EstimateRepo) GetByID(ctx context.Context, id string) (*entity.Estimate, error) {
	return r.getOne(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = $1`, id)
}

// GetByOrderID cotización de la orden.
func (r *EstimateRepo) GetByOrderID(ctx context.Context, orderID string) (*entity.Estimate, error) {
	return r.getOne(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE order_id = $1`, orderID)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE).
func (r *EstimateRepo) GetForUpdate(ctx context.Context, id string) (*entity.Estimate, error) {
	return r.getOne(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste la cabecera.
func (r *EstimateRepo) Update(ctx context.Context, e *entity.Estimate) error {
	_, err := r.q.Exec(ctx, `
		UPDATE estimates SET apply_tax = $2, inventory_applied = $3, status = $4,
			subtotal = $5, tax = $6, total = $7, note = $8, updated_at = $9
		WHERE id = $1`,
		e.ID, e.ApplyTax, e.InventoryApplied, string(e.Status),
		e.Subtotal.Decimal(), e.Tax.Decimal(), e.Total.Decimal(), e.Note, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update estimate: %w", err)
	}
	return nil
}

// DeletePendingItems borra solo partidas sin decisión.
func (r *EstimateRepo) DeletePendingItems(ctx context.Context, estimateID string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM estimate_items WHERE estimate_id = $1 AND status = $2 AND decided_at IS NULL`,
		estimateID, string(entity.DecisionPending),
	)
	if err != nil {
		return fmt.Errorf("delete pending estimate items: %w", err)
	}
	return nil
}

// CreateItem inserta una partida.
func (r *EstimateRepo) CreateItem(ctx context.Context, it *entity.EstimateItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO estimate_items (id, estimate_id, position, description, quantity, unit_price,
			inventory_item_id, status, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		it.ID, it.EstimateID, it.Position, it.Description, it.Quantity, it.UnitPrice.Decimal(),
		nullIfEmpty(it.InventoryItemID), string(it.Status), it.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("insert estimate item: %w", err)
	}
	return nil
}

// UpdateItemDecision persiste la decisión. decided_at solo se fija si estaba vacío.
func (r *EstimateRepo) UpdateItemDecision(ctx context.Context, it *entity.EstimateItem) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE estimate_items SET status = $2, decided_at = COALESCE(decided_at, $3)
		WHERE id = $1 AND decided_at IS NULL`,
		it.ID, string(it.Status), it.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("update estimate item decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.DecisionFinalError{ItemID: it.ID}
	}
	return nil
}

// MarkInventoryApplied fija la bandera de idempotencia.
func (r *EstimateRepo) MarkInventoryApplied(ctx context.Context, estimateID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE estimates SET inventory_applied = TRUE, updated_at = now() WHERE id = $1`, estimateID)
	if err != nil {
		return fmt.Errorf("mark inventory applied: %w", err)
	}
	return nil
}
