package repository

// Store agrupa los repositorios atados a una misma conexión o transacción.
type Store interface {
	Customers() CustomerRepository
	Devices() DeviceRepository
	Orders() ServiceOrderRepository
	History() StatusHistoryRepository
	Estimates() EstimateRepository
	Payments() PaymentRepository
	Items() InventoryItemRepository
	Movements() InventoryMovementRepository
}
