// Package memory implementa repository.Store y ports.TxRunner en proceso.
// Las transacciones se serializan y trabajan sobre una copia del estado que
// solo se publica si el callback termina sin error.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/Reparaciones-api/internal/application/ports"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

var _ ports.TxRunner = (*DB)(nil)

type data struct {
	customers map[string]entity.Customer
	devices   map[string]entity.Device
	orders    map[string]entity.ServiceOrder
	history   []entity.StatusHistory
	estimates map[string]entity.Estimate
	payments  []entity.Payment
	items     map[string]entity.InventoryItem
	movements []entity.InventoryMovement
}

func newData() *data {
	return &data{
		customers: map[string]entity.Customer{},
		devices:   map[string]entity.Device{},
		orders:    map[string]entity.ServiceOrder{},
		estimates: map[string]entity.Estimate{},
		items:     map[string]entity.InventoryItem{},
	}
}

func (d *data) clone() *data {
	c := &data{
		customers: make(map[string]entity.Customer, len(d.customers)),
		devices:   make(map[string]entity.Device, len(d.devices)),
		orders:    make(map[string]entity.ServiceOrder, len(d.orders)),
		history:   append([]entity.StatusHistory(nil), d.history...),
		estimates: make(map[string]entity.Estimate, len(d.estimates)),
		payments:  append([]entity.Payment(nil), d.payments...),
		items:     make(map[string]entity.InventoryItem, len(d.items)),
		movements: append([]entity.InventoryMovement(nil), d.movements...),
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.devices {
		c.devices[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range d.estimates {
		c.estimates[k] = copyEstimate(v)
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	return c
}

func copyOrder(o entity.ServiceOrder) entity.ServiceOrder {
	o.DeviceIDs = append([]string(nil), o.DeviceIDs...)
	return o
}

func copyEstimate(e entity.Estimate) entity.Estimate {
	e.Items = append([]entity.EstimateItem(nil), e.Items...)
	return e
}

// DB base de datos en memoria.
type DB struct {
	txMu  sync.Mutex   // serializa transacciones
	mu    sync.RWMutex // protege state
	state *data

	folioConflicts atomic.Int32
}

// New crea una base vacía.
func New() *DB {
	return &DB{state: newData()}
}

// Store acceso fuera de transacción; cada operación toma el candado por separado.
func (db *DB) Store() repository.Store {
	return &Store{db: db}
}

// RunWorkshop ejecuta fn sobre una copia del estado y la confirma si no hay error.
func (db *DB) RunWorkshop(ctx context.Context, fn func(store repository.Store) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mu.RLock()
	work := db.state.clone()
	db.mu.RUnlock()

	if err := fn(&Store{db: db, tx: work}); err != nil {
		return err
	}

	db.mu.Lock()
	db.state = work
	db.mu.Unlock()
	return nil
}

// InjectFolioConflicts hace que los próximos n INSERT de órdenes fallen como si
// el folio ya existiera (tests del reintento).
func (db *DB) InjectFolioConflicts(n int) {
	db.folioConflicts.Store(int32(n))
}

func (db *DB) takeFolioConflict() bool {
	for {
		n := db.folioConflicts.Load()
		if n <= 0 {
			return false
		}
		if db.folioConflicts.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

var _ repository.Store = (*Store)(nil)

// Store repositorios sobre el estado de una transacción o sobre el estado confirmado.
type Store struct {
	db *DB
	tx *data
}

// read ejecuta fn con el estado visible para este store.
func (s *Store) read(fn func(d *data)) {
	if s.tx != nil {
		fn(s.tx)
		return
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	fn(s.db.state)
}

// write igual que read pero con candado exclusivo fuera de transacción.
func (s *Store) write(fn func(d *data) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.state)
}

func (s *Store) Customers() repository.CustomerRepository          { return customerRepo{s} }
func (s *Store) Devices() repository.DeviceRepository              { return deviceRepo{s} }
func (s *Store) Orders() repository.ServiceOrderRepository         { return orderRepo{s} }
func (s *Store) History() repository.StatusHistoryRepository       { return historyRepo{s} }
func (s *Store) Estimates() repository.EstimateRepository          { return estimateRepo{s} }
func (s *Store) Payments() repository.PaymentRepository            { return paymentRepo{s} }
func (s *Store) Items() repository.InventoryItemRepository         { return itemRepo{s} }
func (s *Store) Movements() repository.InventoryMovementRepository { return movementRepo{s} }
