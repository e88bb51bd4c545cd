package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
)

func sortBy[T any](s []T, less func(a, b T) bool) {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
}

type itemRepo struct{ s *Store }

func (r itemRepo) Create(_ context.Context, it *entity.InventoryItem) error {
	return r.s.write(func(d *data) error {
		for _, cur := range d.items {
			if cur.SKU == it.SKU || cur.ID == it.ID {
				return domain.ErrDuplicate
			}
		}
		d.items[it.ID] = *it
		return nil
	})
}

func (r itemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	r.s.read(func(d *data) {
		if it, ok := d.items[id]; ok {
			out = &it
		}
	})
	return out, nil
}

func (r itemRepo) GetBySKU(_ context.Context, sku string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	r.s.read(func(d *data) {
		for _, it := range d.items {
			if it.SKU == sku {
				it := it
				out = &it
				return
			}
		}
	})
	return out, nil
}

func (r itemRepo) LockBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	return r.GetBySKU(ctx, sku)
}

func (r itemRepo) LockMany(_ context.Context, ids []string) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	r.s.read(func(d *data) {
		for _, id := range ids {
			if it, ok := d.items[id]; ok {
				out = append(out, &it)
			}
		}
	})
	sortBy(out, func(a, b *entity.InventoryItem) bool { return a.ID < b.ID })
	return out, nil
}

func (r itemRepo) UpdateQuantity(_ context.Context, id string, quantity int) error {
	if quantity < 0 {
		return domain.Invalid("quantity", "no puede ser negativa")
	}
	return r.s.write(func(d *data) error {
		cur, ok := d.items[id]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Quantity = quantity
		d.items[id] = cur
		return nil
	})
}

func (r itemRepo) all(keep func(*entity.InventoryItem) bool) []*entity.InventoryItem {
	var out []*entity.InventoryItem
	r.s.read(func(d *data) {
		for _, it := range d.items {
			it := it
			if keep(&it) {
				out = append(out, &it)
			}
		}
	})
	sortBy(out, func(a, b *entity.InventoryItem) bool { return a.SKU < b.SKU })
	return out
}

func (r itemRepo) ListLow(_ context.Context) ([]*entity.InventoryItem, error) {
	return r.all((*entity.InventoryItem).IsLow), nil
}

func (r itemRepo) List(_ context.Context, limit, offset int) ([]*entity.InventoryItem, error) {
	return page(r.all(func(*entity.InventoryItem) bool { return true }), limit, offset), nil
}

func page[T any](s []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 50
	}
	if offset >= len(s) {
		return nil
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	return s[offset:end]
}

type movementRepo struct{ s *Store }

func (r movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	if m.Delta == 0 {
		return domain.Invalid("delta", "no puede ser cero")
	}
	return r.s.write(func(d *data) error {
		d.movements = append(d.movements, *m)
		return nil
	})
}

func (r movementRepo) filter(keep func(*entity.InventoryMovement) bool) []*entity.InventoryMovement {
	var out []*entity.InventoryMovement
	r.s.read(func(d *data) {
		for _, m := range d.movements {
			m := m
			if keep(&m) {
				out = append(out, &m)
			}
		}
	})
	return out
}

// ListByItem más recientes primero.
func (r movementRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	list := r.filter(func(m *entity.InventoryMovement) bool { return m.ItemID == itemID })
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return page(list, limit, offset), nil
}

func (r movementRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.InventoryMovement, error) {
	return r.filter(func(m *entity.InventoryMovement) bool { return m.OrderID == orderID }), nil
}
