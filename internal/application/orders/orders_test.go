package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Reparaciones-api/internal/application/billing"
	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/orders"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
)

func TestCreateOrder_FolioSecuencial(t *testing.T) {
	f := newFixture(t)
	a := f.newOrder(t)
	b := f.newOrder(t)

	assert.Equal(t, "SR-0001-2026", a.Folio)
	assert.Equal(t, "SR-0002-2026", b.Folio)
	assert.Equal(t, entity.StatusNew, a.Status)
	assert.NotEqual(t, a.Token, b.Token)

	hist, err := f.store.History().ListByOrder(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, entity.StatusNew, hist[0].ToStatus)
	assert.Equal(t, "Recepcion", hist[0].ActorRole)
}

func TestCreateOrder_SinContacto(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		Customer: orders.CustomerInput{Name: "Sin datos"},
		Devices:  []orders.DeviceInput{{Brand: "HP"}},
		Actor:    frontDesk,
	})
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestCreateOrder_SinEquipos(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		Customer: orders.CustomerInput{Name: "Ana", Phone: "1"},
		Actor:    frontDesk,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateOrder_TecnicoNoAsigna(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		Customer:   orders.CustomerInput{Name: "Ana", Phone: "1"},
		Devices:    []orders.DeviceInput{{Brand: "HP"}},
		AssignedTo: tech.UserID,
		Actor:      tech,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateOrder_ReintentaFolioEnConflicto(t *testing.T) {
	f := newFixture(t)
	f.db.InjectFolioConflicts(2)

	o := f.newOrder(t)
	assert.Equal(t, "SR-0001-2026", o.Folio)
	// solo se publica el alta que sí se confirmó
	assert.Len(t, f.pub.Named(events.NameOrderStatusChanged), 1)
}

func TestCreateOrder_FoliosAgotados(t *testing.T) {
	f := newFixture(t)
	f.db.InjectFolioConflicts(orders.DefaultFolioAttempts)

	_, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		Customer: orders.CustomerInput{Name: "Ana", Phone: "1"},
		Devices:  []orders.DeviceInput{{Brand: "HP"}},
		Actor:    frontDesk,
	})
	var conflict *domain.IdentityConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, orders.DefaultFolioAttempts, conflict.Attempts)
	assert.Equal(t, "SR-0001-2026", conflict.Folio)
	assert.ErrorIs(t, err, domain.ErrIdentityConflict)

	folios, err := f.store.Orders().ListFoliosBySuffix(context.Background(), "-2026")
	require.NoError(t, err)
	assert.Empty(t, folios)
	assert.Empty(t, f.pub.Events())
}

func TestCreateOrder_ConcurrenteFoliosUnicos(t *testing.T) {
	f := newFixture(t)
	const n = 20

	var mu sync.Mutex
	seen := map[string]bool{}
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			o, err := f.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
				Customer: orders.CustomerInput{Name: "Cliente", Email: "c@taller.mx"},
				Devices:  []orders.DeviceInput{{Brand: "Dell"}},
				Actor:    frontDesk,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			seen[o.Folio] = true
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, seen, n)
	assert.True(t, seen["SR-0001-2026"])
	assert.True(t, seen["SR-0020-2026"])
}

func TestAssignFolio_ErrorAjenoNoReintenta(t *testing.T) {
	calls := 0
	boom := errors.New("db caída")
	_, err := orders.AssignFolio(context.Background(), 3, func(context.Context, int) (string, error) {
		calls++
		return "SR-0001-2026", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestFlujo_TotalConIVAYCierrePorPago(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pant := f.item(t, "PANT-01", 3, 1)

	o := f.newOrder(t)
	f.move(t, o.ID, entity.StatusInReview, tech)
	e := f.quote(t, o.ID, "PANT-01")
	assert.Equal(t, "174.00", e.Total.String())
	e = f.acceptAll(t, e)
	assert.Equal(t, entity.EstimateClosedAccepted, e.Status)

	f.move(t, o.ID, entity.StatusReadyPickup, tech)
	got, err := f.store.Items().GetByID(ctx, pant.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	// abono parcial: sigue en READY
	res, err := f.payments.AddPayment(ctx, billing.AddPaymentInput{OrderID: o.ID, Amount: money.MustParse("100.00"), Method: "tarjeta", Actor: frontDesk})
	require.NoError(t, err)
	assert.False(t, res.AutoClosed)
	assert.Equal(t, "74.00", res.Ledger.Balance.String())

	// excedente
	_, err = f.payments.AddPayment(ctx, billing.AddPaymentInput{OrderID: o.ID, Amount: money.MustParse("74.01"), Method: "efectivo", Actor: frontDesk})
	var bv *domain.BalanceViolationError
	require.True(t, errors.As(err, &bv))
	assert.Equal(t, "74.00", bv.Balance)

	res, err = f.payments.AddPayment(ctx, billing.AddPaymentInput{OrderID: o.ID, Amount: money.MustParse("74.00"), Method: "efectivo", Actor: frontDesk})
	require.NoError(t, err)
	assert.True(t, res.AutoClosed)
	assert.Equal(t, entity.StatusDelivered, res.Order.Status)
	require.NotNil(t, res.Order.CheckoutAt)

	d, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, d.Ledger.Balance.IsZero())
	assert.Len(t, d.Payments, 2)
	require.Len(t, d.History, 4)
	last := d.History[3]
	assert.Equal(t, entity.StatusReadyPickup, last.FromStatus)
	assert.Equal(t, entity.StatusDelivered, last.ToStatus)
	assert.Equal(t, "Sistema", last.ActorRole)
	assert.Contains(t, last.Reason, "Cierre automático")

	// sin saldo ya no se aceptan pagos
	_, err = f.payments.AddPayment(ctx, billing.AddPaymentInput{OrderID: o.ID, Amount: money.MustParse("1.00"), Method: "efectivo", Actor: frontDesk})
	assert.ErrorIs(t, err, domain.ErrBalance)
}

func TestTransition_EntregaConSaldoPendiente(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)
	f.move(t, o.ID, entity.StatusInReview, tech)
	f.acceptAll(t, f.quote(t, o.ID, ""))
	f.move(t, o.ID, entity.StatusReadyPickup, tech)

	_, err := f.orders.TransitionStatus(context.Background(), o.ID, orders.TransitionRequest{Target: entity.StatusDelivered, Actor: frontDesk})
	var bv *domain.BalanceViolationError
	require.True(t, errors.As(err, &bv))
	assert.Equal(t, "174.00", bv.Balance)

	// la orden no cambió
	got, err := f.store.Orders().GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReadyPickup, got.Status)
}

func TestTransition_TecnicoNoAsignado(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)

	_, err := f.orders.TransitionStatus(context.Background(), o.ID, orders.TransitionRequest{Target: entity.StatusInReview, Actor: otherTech})
	var te *domain.InvalidTransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "NEW", te.From)

	hist, err := f.store.History().ListByOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestTransition_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.item(t, "PANT-01", 0, 0)

	o := f.newOrder(t)
	f.move(t, o.ID, entity.StatusInReview, tech)
	f.acceptAll(t, f.quote(t, o.ID, "PANT-01"))

	_, err := f.orders.TransitionStatus(ctx, o.ID, orders.TransitionRequest{Target: entity.StatusReadyPickup, Actor: tech})
	var se *domain.InsufficientStockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"PANT-01"}, se.SKUs)

	got, err := f.store.Orders().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInReview, got.Status)
	movs, err := f.store.Movements().ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, movs)
	e, err := f.estimates.GetByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, e.InventoryApplied)
}

func TestTransition_ConsumoUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pant := f.item(t, "PANT-01", 5, 0)

	o := f.newOrder(t)
	f.move(t, o.ID, entity.StatusInReview, tech)
	f.acceptAll(t, f.quote(t, o.ID, "PANT-01"))
	f.move(t, o.ID, entity.StatusReadyPickup, tech)

	// regreso administrativo y nueva entrada a READY
	_, err := f.orders.ForceStatus(ctx, o.ID, entity.StatusInReview, manager, "faltó calibrar")
	require.NoError(t, err)
	f.move(t, o.ID, entity.StatusReadyPickup, tech)

	got, err := f.store.Items().GetByID(ctx, pant.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
	movs, err := f.store.Movements().ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, -1, movs[0].Delta)
	assert.Equal(t, entity.ReasonEstimatePrefix+" "+o.Folio, movs[0].Reason)
}

func TestTransition_PartidaLigadaRechazadaTambienConsume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pant := f.item(t, "PANT-01", 3, 0)

	o := f.newOrder(t)
	f.move(t, o.ID, entity.StatusInReview, tech)
	e := f.quote(t, o.ID, "PANT-01")
	e, err := f.estimates.FinalizePendingDecisions(ctx, e.ID, map[string]entity.Decision{
		e.Items[0].ID: entity.DecisionRejected,
		e.Items[1].ID: entity.DecisionAccepted,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EstimateClosedPartial, e.Status)

	f.move(t, o.ID, entity.StatusReadyPickup, tech)
	got, err := f.store.Items().GetByID(ctx, pant.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	movs, err := f.store.Movements().ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, -1, movs[0].Delta)

	// el cobro sigue siendo solo lo aceptado
	ledger, _, err := f.payments.GetLedger(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "58.00", ledger.Approved.String())
}

func TestForceStatus_RequiereGerenciaYMotivo(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)
	ctx := context.Background()

	_, err := f.orders.ForceStatus(ctx, o.ID, entity.StatusReadyPickup, frontDesk, "x")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.orders.ForceStatus(ctx, o.ID, entity.StatusReadyPickup, manager, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.orders.ForceStatus(ctx, o.ID, entity.StatusReadyPickup, manager, "equipo listo sin revisión")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReadyPickup, got.Status)
}

func TestCancel_SoloGerencia(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)
	ctx := context.Background()

	_, err := f.orders.Cancel(ctx, o.ID, frontDesk, "cliente desiste")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.orders.Cancel(ctx, o.ID, manager, "cliente desiste")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, got.Status)
	assert.Nil(t, got.CheckoutAt)
}

func TestReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.delivered(t)

	_, err := f.orders.Reopen(ctx, o.ID, frontDesk, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.orders.Reopen(ctx, o.ID, tech, "falla de nuevo")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.orders.Reopen(ctx, o.ID, frontDesk, "falla de nuevo")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInReview, got.Status)

	hist, err := f.store.History().ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	last := hist[len(hist)-1]
	assert.Equal(t, entity.StatusDelivered, last.FromStatus)
	assert.Equal(t, "Reapertura: falla de nuevo", last.Reason)

	// reabrir una orden abierta no aplica
	_, err = f.orders.Reopen(ctx, o.ID, frontDesk, "otra vez")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestWarranty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.delivered(t)

	child, err := f.orders.CreateWarrantyOrder(ctx, parent.ID, frontDesk, "pantalla parpadea")
	require.NoError(t, err)
	assert.Equal(t, "SR-0002-2026", child.Folio)
	assert.Equal(t, parent.ID, child.WarrantyParentID)
	assert.Equal(t, parent.CustomerID, child.CustomerID)
	assert.Equal(t, entity.StatusNew, child.Status)

	// sin cargo
	ledger, _, err := f.payments.GetLedger(ctx, child.ID)
	require.NoError(t, err)
	assert.True(t, ledger.Approved.IsZero())

	// garantía de garantía
	_, err = f.orders.CreateWarrantyOrder(ctx, child.ID, frontDesk, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// la madre no puede volver a DONE con la hija abierta
	_, err = f.orders.Reopen(ctx, parent.ID, frontDesk, "revisar junto con garantía")
	require.NoError(t, err)
	f.move(t, parent.ID, entity.StatusReadyPickup, tech)
	_, err = f.orders.TransitionStatus(ctx, parent.ID, orders.TransitionRequest{Target: entity.StatusDelivered, Actor: frontDesk})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.orders.Cancel(ctx, child.ID, manager, "no procede")
	require.NoError(t, err)
	got := f.move(t, parent.ID, entity.StatusDelivered, frontDesk)
	assert.Equal(t, entity.StatusDelivered, got.Status)
}

func TestWarranty_MadreNoEntregada(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)
	_, err := f.orders.CreateWarrantyOrder(context.Background(), o.ID, frontDesk, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssignTechnician(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.newOrder(t)

	_, err := f.orders.AssignTechnician(ctx, o.ID, otherTech.UserID, tech)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.orders.AssignTechnician(ctx, o.ID, otherTech.UserID, frontDesk)
	require.NoError(t, err)
	assert.Equal(t, otherTech.UserID, got.AssignedTo)

	f.move(t, o.ID, entity.StatusInReview, otherTech)
	_, err = f.orders.TransitionStatus(ctx, o.ID, orders.TransitionRequest{Target: entity.StatusReadyPickup, Actor: tech})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAllowedTargets(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)

	got, err := f.orders.AllowedTargets(context.Background(), o.ID, tech)
	require.NoError(t, err)
	assert.ElementsMatch(t, []entity.OrderStatus{entity.StatusInReview}, got)

	got, err = f.orders.AllowedTargets(context.Background(), o.ID, manager)
	require.NoError(t, err)
	assert.ElementsMatch(t, []entity.OrderStatus{entity.StatusInReview, entity.StatusCancelled}, got)
}

func TestGetByToken(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)
	d, err := f.orders.GetByToken(context.Background(), o.Token)
	require.NoError(t, err)
	assert.Equal(t, o.Folio, d.Order.Folio)

	_, err = f.orders.GetByToken(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckout_SeFijaUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clock := fixedNow
	f.orders.SetClock(func() time.Time { return clock })

	o := f.delivered(t)
	require.NotNil(t, o.CheckoutAt)
	first := *o.CheckoutAt

	steps := []func() (*entity.ServiceOrder, error){
		func() (*entity.ServiceOrder, error) { return f.orders.Cancel(ctx, o.ID, manager, "devolución") },
		func() (*entity.ServiceOrder, error) {
			return f.orders.Reopen(ctx, o.ID, frontDesk, "regresa a revisión")
		},
		func() (*entity.ServiceOrder, error) {
			return f.orders.TransitionStatus(ctx, o.ID, orders.TransitionRequest{Target: entity.StatusReadyPickup, Actor: tech})
		},
		func() (*entity.ServiceOrder, error) {
			return f.orders.TransitionStatus(ctx, o.ID, orders.TransitionRequest{Target: entity.StatusDelivered, Actor: frontDesk})
		},
	}
	for i, step := range steps {
		clock = clock.Add(time.Hour)
		got, err := step()
		require.NoError(t, err, "paso %d", i)
		require.NotNil(t, got.CheckoutAt, "paso %d", i)
		assert.True(t, first.Equal(*got.CheckoutAt), "paso %d", i)

		stored, err := f.store.Orders().GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, first.Equal(*stored.CheckoutAt), "paso %d", i)
	}
	got, err := f.store.Orders().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, got.Status)
}

func TestWarranty_CotizacionSinIVA(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.delivered(t)
	child, err := f.orders.CreateWarrantyOrder(ctx, parent.ID, frontDesk, "bisagra floja")
	require.NoError(t, err)

	e := f.quote(t, child.ID, "")
	assert.False(t, e.ApplyTax)
	assert.True(t, e.Tax.IsZero())
	assert.Equal(t, "150.00", e.Total.String())
}
