package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
)

type customerRepo struct{ s *Store }

func (r customerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.customers[c.ID]; ok {
			return domain.ErrDuplicate
		}
		d.customers[c.ID] = *c
		return nil
	})
}

func (r customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	r.s.read(func(d *data) {
		if c, ok := d.customers[id]; ok {
			out = &c
		}
	})
	return out, nil
}

type deviceRepo struct{ s *Store }

func (r deviceRepo) Create(_ context.Context, dev *entity.Device) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.devices[dev.ID]; ok {
			return domain.ErrDuplicate
		}
		d.devices[dev.ID] = *dev
		return nil
	})
}

func (r deviceRepo) GetByID(_ context.Context, id string) (*entity.Device, error) {
	var out *entity.Device
	r.s.read(func(d *data) {
		if dev, ok := d.devices[id]; ok {
			out = &dev
		}
	})
	return out, nil
}

func (r deviceRepo) ListByCustomer(_ context.Context, customerID string) ([]*entity.Device, error) {
	var out []*entity.Device
	r.s.read(func(d *data) {
		for _, dev := range d.devices {
			if dev.CustomerID == customerID {
				dev := dev
				out = append(out, &dev)
			}
		}
	})
	sortBy(out, func(a, b *entity.Device) bool { return a.CreatedAt.Before(b.CreatedAt) })
	return out, nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *entity.ServiceOrder) error {
	return r.s.write(func(d *data) error {
		if r.s.db.takeFolioConflict() {
			return domain.ErrFolioTaken
		}
		for _, existing := range d.orders {
			if existing.Folio == o.Folio {
				return domain.ErrFolioTaken
			}
			if existing.ID == o.ID || existing.Token == o.Token {
				return domain.ErrDuplicate
			}
		}
		d.orders[o.ID] = copyOrder(*o)
		return nil
	})
}

func (r orderRepo) find(match func(o *entity.ServiceOrder) bool) *entity.ServiceOrder {
	var out *entity.ServiceOrder
	r.s.read(func(d *data) {
		for _, o := range d.orders {
			if match(&o) {
				c := copyOrder(o)
				out = &c
				return
			}
		}
	})
	return out
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.ServiceOrder, error) {
	return r.find(func(o *entity.ServiceOrder) bool { return o.ID == id }), nil
}

// GetForUpdate las transacciones ya están serializadas.
func (r orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.GetByID(ctx, id)
}

func (r orderRepo) GetByToken(_ context.Context, token string) (*entity.ServiceOrder, error) {
	return r.find(func(o *entity.ServiceOrder) bool { return o.Token == token }), nil
}

func (r orderRepo) UpdateStatus(_ context.Context, o *entity.ServiceOrder) error {
	return r.s.write(func(d *data) error {
		cur, ok := d.orders[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = o.Status
		cur.CheckoutAt = o.CheckoutAt
		cur.UpdatedAt = o.UpdatedAt
		d.orders[o.ID] = cur
		return nil
	})
}

func (r orderRepo) UpdateAssignment(_ context.Context, orderID, userID string) error {
	return r.s.write(func(d *data) error {
		cur, ok := d.orders[orderID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.AssignedTo = userID
		d.orders[orderID] = cur
		return nil
	})
}

func (r orderRepo) ListFoliosBySuffix(_ context.Context, suffix string) ([]string, error) {
	var out []string
	r.s.read(func(d *data) {
		for _, o := range d.orders {
			if strings.HasSuffix(o.Folio, suffix) {
				out = append(out, o.Folio)
			}
		}
	})
	return out, nil
}

func (r orderRepo) CountOpenWarrantyChildren(_ context.Context, parentID string) (int, error) {
	n := 0
	r.s.read(func(d *data) {
		for _, o := range d.orders {
			if o.WarrantyParentID == parentID && !o.Status.IsTerminal() {
				n++
			}
		}
	})
	return n, nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) Append(_ context.Context, h *entity.StatusHistory) error {
	return r.s.write(func(d *data) error {
		d.history = append(d.history, *h)
		return nil
	})
}

func (r historyRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.StatusHistory, error) {
	var out []*entity.StatusHistory
	r.s.read(func(d *data) {
		for _, h := range d.history {
			if h.OrderID == orderID {
				h := h
				out = append(out, &h)
			}
		}
	})
	return out, nil
}
