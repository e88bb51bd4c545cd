package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

type estimateRepo struct{ s *Store }

func (r estimateRepo) Create(_ context.Context, e *entity.Estimate) error {
	return r.s.write(func(d *data) error {
		for _, cur := range d.estimates {
			if cur.ID == e.ID || cur.OrderID == e.OrderID {
				return domain.ErrDuplicate
			}
		}
		d.estimates[e.ID] = copyEstimate(*e)
		return nil
	})
}

func (r estimateRepo) find(match func(e *entity.Estimate) bool) *entity.Estimate {
	var out *entity.Estimate
	r.s.read(func(d *data) {
		for _, e := range d.estimates {
			if match(&e) {
				c := copyEstimate(e)
				sort.SliceStable(c.Items, func(i, j int) bool { return c.Items[i].Position < c.Items[j].Position })
				out = &c
				return
			}
		}
	})
	return out
}

func (r estimateRepo) GetByID(_ context.Context, id string) (*entity.Estimate, error) {
	return r.find(func(e *entity.Estimate) bool { return e.ID == id }), nil
}

func (r estimateRepo) GetByOrderID(_ context.Context, orderID string) (*entity.Estimate, error) {
	return r.find(func(e *entity.Estimate) bool { return e.OrderID == orderID }), nil
}

func (r estimateRepo) GetForUpdate(ctx context.Context, id string) (*entity.Estimate, error) {
	return r.GetByID(ctx, id)
}

// Update solo la cabecera; las partidas tienen sus propias operaciones.
func (r estimateRepo) Update(_ context.Context, e *entity.Estimate) error {
	return r.s.write(func(d *data) error {
		cur, ok := d.estimates[e.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.ApplyTax = e.ApplyTax
		cur.InventoryApplied = e.InventoryApplied
		cur.Status = e.Status
		cur.Subtotal, cur.Tax, cur.Total = e.Subtotal, e.Tax, e.Total
		cur.Note = e.Note
		cur.UpdatedAt = e.UpdatedAt
		d.estimates[e.ID] = cur
		return nil
	})
}

func (r estimateRepo) DeletePendingItems(_ context.Context, estimateID string) error {
	return r.s.write(func(d *data) error {
		cur, ok := d.estimates[estimateID]
		if !ok {
			return domain.ErrNotFound
		}
		kept := cur.Items[:0:0]
		for _, it := range cur.Items {
			if it.IsDecided() {
				kept = append(kept, it)
			}
		}
		cur.Items = kept
		d.estimates[estimateID] = cur
		return nil
	})
}

func (r estimateRepo) CreateItem(_ context.Context, it *entity.EstimateItem) error {
	return r.s.write(func(d *data) error {
		cur, ok := d.estimates[it.EstimateID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Items = append(cur.Items, *it)
		d.estimates[it.EstimateID] = cur
		return nil
	})
}

func (r estimateRepo) UpdateItemDecision(_ context.Context, it *entity.EstimateItem) error {
	return r.s.write(func(d *data) error {
		cur, ok := d.estimates[it.EstimateID]
		if !ok {
			return domain.ErrNotFound
		}
		for i := range cur.Items {
			if cur.Items[i].ID != it.ID {
				continue
			}
			if cur.Items[i].DecidedAt != nil {
				return &domain.DecisionFinalError{ItemID: it.ID}
			}
			cur.Items[i].Status = it.Status
			cur.Items[i].DecidedAt = it.DecidedAt
			d.estimates[it.EstimateID] = cur
			return nil
		}
		return domain.ErrNotFound
	})
}

func (r estimateRepo) MarkInventoryApplied(_ context.Context, estimateID string) error {
	return r.s.write(func(d *data) error {
		cur, ok := d.estimates[estimateID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.InventoryApplied = true
		d.estimates[estimateID] = cur
		return nil
	})
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	if !p.Amount.IsPositive() {
		return domain.Invalid("amount", "debe ser mayor a cero")
	}
	return r.s.write(func(d *data) error {
		d.payments = append(d.payments, *p)
		return nil
	})
}

func (r paymentRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	r.s.read(func(d *data) {
		for _, p := range d.payments {
			if p.OrderID == orderID {
				p := p
				out = append(out, &p)
			}
		}
	})
	return out, nil
}

func (r paymentRepo) SumByOrder(ctx context.Context, orderID string) (money.Money, error) {
	list, _ := r.ListByOrder(ctx, orderID)
	sum := money.Zero
	for _, p := range list {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}
