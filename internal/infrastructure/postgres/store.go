package postgres

import "github.com/jhoicas/Reparaciones-api/internal/domain/repository"

var _ repository.Store = (*Store)(nil)

// Store repositorios sobre un mismo Querier (pool o tx).
type Store struct {
	q Querier
}

// NewStore construye el store. Pasar pool o tx.
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Customers() repository.CustomerRepository { return NewCustomerRepository(s.q) }
func (s *Store) Devices() repository.DeviceRepository     { return NewDeviceRepository(s.q) }
func (s *Store) Orders() repository.ServiceOrderRepository {
	return NewServiceOrderRepository(s.q)
}
func (s *Store) History() repository.StatusHistoryRepository {
	return NewStatusHistoryRepository(s.q)
}
func (s *Store) Estimates() repository.EstimateRepository { return NewEstimateRepository(s.q) }
func (s *Store) Payments() repository.PaymentRepository   { return NewPaymentRepository(s.q) }
func (s *Store) Items() repository.InventoryItemRepository {
	return NewInventoryItemRepository(s.q)
}
func (s *Store) Movements() repository.InventoryMovementRepository {
	return NewInventoryMovementRepository(s.q)
}
