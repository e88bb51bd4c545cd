package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
)

type flaky struct {
	fail map[string]bool
	got  []string
}

func (f *flaky) Publish(_ context.Context, e events.Event) error {
	if f.fail[e.EventName()] {
		return errors.New("sin conexión")
	}
	f.got = append(f.got, e.EventName())
	return nil
}

func TestDispatcher_SigueTrasFallo(t *testing.T) {
	rec := events.NewRecorder()
	rec.Record(events.PaymentRecorded{OrderID: "o1"})
	rec.Record(events.OrderStatusChanged{OrderID: "o1"})
	rec.Record(events.LowStockReached{SKU: "A"})

	pub := &flaky{fail: map[string]bool{events.NameOrderStatusChanged: true}}
	failed := events.NewDispatcher(pub, nil).Dispatch(context.Background(), rec)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{events.NamePaymentRecorded, events.NameLowStockReached}, pub.got)
}

func TestDispatcher_SinPublicador(t *testing.T) {
	rec := events.NewRecorder()
	rec.Record(events.LowStockReached{SKU: "A"})
	assert.Zero(t, events.NewDispatcher(nil, nil).Dispatch(context.Background(), rec))

	var d *events.Dispatcher
	assert.Zero(t, d.Dispatch(context.Background(), rec))
}

func TestRecorder_Reset(t *testing.T) {
	rec := events.NewRecorder()
	rec.Record(events.LowStockReached{SKU: "A"})
	evs := rec.Events()
	rec.Reset()
	assert.Empty(t, rec.Events())
	assert.Len(t, evs, 1)
}
