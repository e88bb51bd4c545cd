package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reparaciones-api/internal/application/billing"
	"github.com/jhoicas/Reparaciones-api/internal/application/estimates"
	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/inventory"
	"github.com/jhoicas/Reparaciones-api/internal/application/orders"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/memory"
)

var (
	manager   = entity.NewActor("u-ger", entity.RoleManager)
	frontDesk = entity.NewActor("u-rec", entity.RoleFrontDesk)
	tech      = entity.NewActor("u-tec", entity.RoleTechnician)
	otherTech = entity.NewActor("u-tec2", entity.RoleTechnician)
)

var fixedNow = time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

type fixture struct {
	db        *memory.DB
	store     repository.Store
	pub       *events.MemoryPublisher
	orders    *orders.UseCase
	estimates *estimates.UseCase
	payments  *billing.PaymentUseCase
	stock     *inventory.StockUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	store := db.Store()
	pub := &events.MemoryPublisher{}
	dispatcher := events.NewDispatcher(pub, nil)
	rate := decimal.RequireFromString("0.16")
	reconciler := billing.NewReconciler(rate)

	uc := orders.NewUseCase(db, store, reconciler, inventory.NewConsumer(), dispatcher, nil, orders.Config{Location: time.UTC})
	uc.SetClock(func() time.Time { return fixedNow })
	est := estimates.NewUseCase(db, store, dispatcher, nil, rate)
	est.SetClock(func() time.Time { return fixedNow })

	return &fixture{
		db:        db,
		store:     store,
		pub:       pub,
		orders:    uc,
		estimates: est,
		payments:  billing.NewPaymentUseCase(db, store, reconciler, uc, dispatcher),
		stock:     inventory.NewStockUseCase(db, store, dispatcher),
	}
}

func (f *fixture) newOrder(t *testing.T) *entity.ServiceOrder {
	t.Helper()
	o, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		Customer:   orders.CustomerInput{Name: "Ana López", Phone: "5512345678"},
		Devices:    []orders.DeviceInput{{Brand: "Lenovo", Model: "T480", Serial: "PF-1"}},
		AssignedTo: tech.UserID,
		Actor:      frontDesk,
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) move(t *testing.T, orderID string, target entity.OrderStatus, actor entity.Actor) *entity.ServiceOrder {
	t.Helper()
	o, err := f.orders.TransitionStatus(context.Background(), orderID, orders.TransitionRequest{Target: target, Actor: actor})
	require.NoError(t, err)
	return o
}

func (f *fixture) item(t *testing.T, sku string, qty, min int) *entity.InventoryItem {
	t.Helper()
	it, err := f.stock.CreateItem(context.Background(), inventory.NewItemInput{SKU: sku, Name: sku, Quantity: qty, MinQuantity: min})
	require.NoError(t, err)
	return it
}

// quote guarda la cotización de la prueba: pantalla 100.00 (ligada a sku) + mano de obra 50.00, con IVA.
func (f *fixture) quote(t *testing.T, orderID, sku string) *entity.Estimate {
	t.Helper()
	e, err := f.estimates.SaveEstimate(context.Background(), estimates.SaveInput{
		OrderID:  orderID,
		ApplyTax: true,
		Items: []estimates.ItemInput{
			{Description: "Pantalla", Quantity: 1, UnitPrice: money.MustParse("100.00"), SKU: sku},
			{Description: "Mano de obra", Quantity: 1, UnitPrice: money.MustParse("50.00")},
		},
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) acceptAll(t *testing.T, e *entity.Estimate) *entity.Estimate {
	t.Helper()
	decisions := map[string]entity.Decision{}
	for _, it := range e.Items {
		decisions[it.ID] = entity.DecisionAccepted
	}
	out, err := f.estimates.FinalizePendingDecisions(context.Background(), e.ID, decisions)
	require.NoError(t, err)
	return out
}

// delivered orden pagada y entregada por la ruta normal (REV, cotización, READY, pago).
func (f *fixture) delivered(t *testing.T) *entity.ServiceOrder {
	t.Helper()
	o := f.newOrder(t)
	f.move(t, o.ID, entity.StatusInReview, tech)
	f.acceptAll(t, f.quote(t, o.ID, ""))
	f.move(t, o.ID, entity.StatusReadyPickup, tech)
	res, err := f.payments.AddPayment(context.Background(), billing.AddPaymentInput{
		OrderID: o.ID, Amount: money.MustParse("174.00"), Method: "efectivo", Actor: frontDesk,
	})
	require.NoError(t, err)
	require.True(t, res.AutoClosed)
	return res.Order
}
