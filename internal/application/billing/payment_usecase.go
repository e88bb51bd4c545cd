package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/application/ports"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/money"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// autoCloseStatuses estados desde los que un saldo en cero cierra la orden.
var autoCloseStatuses = map[entity.OrderStatus]bool{
	entity.StatusReadyPickup:  true,
	entity.StatusRequiresAuth: true,
}

// PaymentUseCase registra pagos y concilia el saldo de la orden.
type PaymentUseCase struct {
	txRunner   ports.TxRunner
	store      repository.Store
	reconciler *Reconciler
	closer     OrderCloser
	dispatcher *events.Dispatcher
	now        func() time.Time
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	txRunner ports.TxRunner,
	store repository.Store,
	reconciler *Reconciler,
	closer OrderCloser,
	dispatcher *events.Dispatcher,
) *PaymentUseCase {
	return &PaymentUseCase{
		txRunner:   txRunner,
		store:      store,
		reconciler: reconciler,
		closer:     closer,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// AddPaymentInput datos del pago.
type AddPaymentInput struct {
	OrderID   string
	DeviceID  string
	Amount    money.Money
	Method    string
	Reference string
	Actor     entity.Actor
}

// PaymentResult pago creado y saldo resultante.
type PaymentResult struct {
	Payment    *entity.Payment
	Order      *entity.ServiceOrder
	Ledger     Ledger
	AutoClosed bool
	// AutoCloseBlocked motivo por el que el saldo llegó a cero pero la orden no se cerró.
	AutoCloseBlocked string
}

// AddPayment valida contra el saldo actual (con la orden bloqueada), crea el pago
// y, si el saldo queda en cero en READY o AUTH, pasa la orden a DONE.
func (uc *PaymentUseCase) AddPayment(ctx context.Context, in AddPaymentInput) (*PaymentResult, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.Invalid("amount", "debe ser mayor a cero")
	}
	res := &PaymentResult{}
	rec := events.NewRecorder()
	err := uc.txRunner.RunWorkshop(ctx, func(store repository.Store) error {
		order, err := store.Orders().GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if in.DeviceID != "" && !order.HasDevice(in.DeviceID) {
			return domain.Invalid("device_id", "el equipo no pertenece a la orden")
		}
		ledger, err := uc.reconciler.Compute(ctx, store, order)
		if err != nil {
			return err
		}
		if !ledger.Balance.IsPositive() {
			return &domain.BalanceViolationError{
				Balance: ledger.Balance.String(),
				Amount:  in.Amount.String(),
				Reason:  "la orden no tiene saldo pendiente",
			}
		}
		if in.Amount.GreaterThan(ledger.Balance) {
			return &domain.BalanceViolationError{
				Balance: ledger.Balance.String(),
				Amount:  in.Amount.String(),
				Reason:  "el pago excede el saldo",
			}
		}

		now := uc.now()
		p := &entity.Payment{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			DeviceID:  in.DeviceID,
			Amount:    in.Amount,
			Method:    strings.TrimSpace(in.Method),
			Reference: strings.TrimSpace(in.Reference),
			AuthorID:  in.Actor.UserID,
			CreatedAt: now,
		}
		if err := store.Payments().Create(ctx, p); err != nil {
			return err
		}
		ledger.Paid = ledger.Paid.Add(p.Amount)
		ledger.Balance = ledger.Approved.Sub(ledger.Paid)
		rec.Record(events.PaymentRecorded{
			OrderID:    order.ID,
			Folio:      order.Folio,
			PaymentID:  p.ID,
			Amount:     p.Amount,
			NewBalance: ledger.Balance,
			At:         now,
		})
		res.Payment, res.Order, res.Ledger = p, order, ledger

		if !ledger.Balance.IsZero() || !autoCloseStatuses[order.Status] || uc.closer == nil {
			return nil
		}
		reason := "Cierre automático: saldo liquidado con pago " + p.ID
		err = uc.closer.CloseInTx(ctx, store, order, entity.SystemActor(), reason, rec)
		switch {
		case err == nil:
			res.AutoClosed = true
		case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrBalance):
			res.AutoCloseBlocked = err.Error()
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.dispatcher.Dispatch(ctx, rec)
	return res, nil
}

// GetLedger saldo actual y pagos de la orden.
func (uc *PaymentUseCase) GetLedger(ctx context.Context, orderID string) (Ledger, []*entity.Payment, error) {
	order, err := uc.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return Ledger{}, nil, err
	}
	if order == nil {
		return Ledger{}, nil, domain.ErrNotFound
	}
	ledger, err := uc.reconciler.Compute(ctx, uc.store, order)
	if err != nil {
		return Ledger{}, nil, err
	}
	payments, err := uc.store.Payments().ListByOrder(ctx, orderID)
	if err != nil {
		return Ledger{}, nil, err
	}
	return ledger, payments, nil
}
