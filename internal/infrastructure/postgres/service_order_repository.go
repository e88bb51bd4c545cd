package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

var (
	_ repository.ServiceOrderRepository  = (*ServiceOrderRepo)(nil)
	_ repository.StatusHistoryRepository = (*StatusHistoryRepo)(nil)
)

// ServiceOrderRepo implementación de ServiceOrderRepository (usable con pool o tx).
type ServiceOrderRepo struct {
	q Querier
}

// NewServiceOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceOrderRepository(q Querier) *ServiceOrderRepo {
	return &ServiceOrderRepo{q: q}
}

const orderColumns = `
	id, folio, token, customer_id, status, checkin_at, checkout_at,
	COALESCE(assigned_to, ''), COALESCE(warranty_parent_id::text, ''), notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.ServiceOrder, error) {
	var o entity.ServiceOrder
	var status string
	err := row.Scan(&o.ID, &o.Folio, &o.Token, &o.CustomerID, &status, &o.CheckinAt, &o.CheckoutAt,
		&o.AssignedTo, &o.WarrantyParentID, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}

// Create inserta la orden y la relación con sus equipos.
func (r *ServiceOrderRepo) Create(ctx context.Context, o *entity.ServiceOrder) error {
	query := `
		INSERT INTO service_orders (id, folio, token, customer_id, status, checkin_at, checkout_at,
			assigned_to, warranty_parent_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.Folio, o.Token, o.CustomerID, string(o.Status), o.CheckinAt, o.CheckoutAt,
		nullIfEmpty(o.AssignedTo), nullIfEmpty(o.WarrantyParentID), o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isFolioViolation(err) {
			return domain.ErrFolioTaken
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert service order: %w", err)
	}
	for i, deviceID := range o.DeviceIDs {
		_, err := r.q.Exec(ctx,
			`INSERT INTO service_order_devices (order_id, device_id, position) VALUES ($1, $2, $3)`,
			o.ID, deviceID, i,
		)
		if err != nil {
			return fmt.Errorf("insert service order device: %w", err)
		}
	}
	return nil
}

func (r *ServiceOrderRepo) getOne(ctx context.Context, query string, arg any) (*entity.ServiceOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service order: %w", err)
	}
	if err := r.loadDevices(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *ServiceOrderRepo) loadDevices(ctx context.Context, o *entity.ServiceOrder) error {
	rows, err := r.q.Query(ctx,
		`SELECT device_id FROM service_order_devices WHERE order_id = $1 ORDER BY position`, o.ID)
	if err != nil {
		return fmt.Errorf("list order devices: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan order devices: %w", err)
	}
	o.DeviceIDs = ids
	return nil
}

// GetByID obtiene una orden por ID.
func (r *ServiceOrderRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden y bloquea la fila para update (SELECT FOR UPDATE).
func (r *ServiceOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1 FOR UPDATE`, id)
}

// GetByToken orden por token público.
func (r *ServiceOrderRepo) GetByToken(ctx context.Context, token string) (*entity.ServiceOrder, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE token = $1`, token)
}

// UpdateStatus persiste status, checkout_at y updated_at.
func (r *ServiceOrderRepo) UpdateStatus(ctx context.Context, o *entity.ServiceOrder) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE service_orders SET status = $2, checkout_at = $3, updated_at = $4 WHERE id = $1`,
		o.ID, string(o.Status), o.CheckoutAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateAssignment fija o limpia el técnico asignado.
func (r *ServiceOrderRepo) UpdateAssignment(ctx context.Context, orderID, userID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE service_orders SET assigned_to = $2, updated_at = now() WHERE id = $1`,
		orderID, nullIfEmpty(userID),
	)
	if err != nil {
		return fmt.Errorf("update service order assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListFoliosBySuffix folios que terminan en suffix. El formato exacto se valida en dominio.
func (r *ServiceOrderRepo) ListFoliosBySuffix(ctx context.Context, suffix string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT folio FROM service_orders WHERE folio LIKE '%' || $1`, suffix)
	if err != nil {
		return nil, fmt.Errorf("list folios: %w", err)
	}
	folios, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan folios: %w", err)
	}
	return folios, nil
}

// CountOpenWarrantyChildren garantías no terminales de la orden.
func (r *ServiceOrderRepo) CountOpenWarrantyChildren(ctx context.Context, parentID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM service_orders
		WHERE warranty_parent_id = $1 AND status NOT IN ($2, $3)`,
		parentID, string(entity.StatusDelivered), string(entity.StatusCancelled),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count warranty children: %w", err)
	}
	return n, nil
}

// StatusHistoryRepo historial de estados (solo inserción).
type StatusHistoryRepo struct {
	q Querier
}

// NewStatusHistoryRepository construye el adaptador.
func NewStatusHistoryRepository(q Querier) *StatusHistoryRepo {
	return &StatusHistoryRepo{q: q}
}

// Append inserta una fila de historial.
func (r *StatusHistoryRepo) Append(ctx context.Context, h *entity.StatusHistory) error {
	query := `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, actor_id, actor_role, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		h.ID, h.OrderID, string(h.FromStatus), string(h.ToStatus), nullIfEmpty(h.ActorID), h.ActorRole, h.Reason, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

// ListByOrder historial de la orden, más antiguo primero.
func (r *StatusHistoryRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.StatusHistory, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, from_status, to_status, COALESCE(actor_id, ''), actor_role, reason, created_at
		FROM order_status_history WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()
	var list []*entity.StatusHistory
	for rows.Next() {
		var h entity.StatusHistory
		var from, to string
		if err := rows.Scan(&h.ID, &h.OrderID, &from, &to, &h.ActorID, &h.ActorRole, &h.Reason, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		h.FromStatus, h.ToStatus = entity.OrderStatus(from), entity.OrderStatus(to)
		list = append(list, &h)
	}
	return list, rows.Err()
}
