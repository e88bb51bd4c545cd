package notify

import (
	"context"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

var _ events.Publisher = (*LogPublisher)(nil)

// LogPublisher escribe los eventos en el log. Es el destino cuando no hay Redis.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish implementa events.Publisher.
func (p *LogPublisher) Publish(_ context.Context, e events.Event) error {
	ev := p.log.Info().Str("event", e.EventName()).Time("at", e.OccurredAt())
	switch v := e.(type) {
	case events.OrderStatusChanged:
		ev = ev.Str("folio", v.Folio).Str("from", string(v.From)).Str("to", string(v.To)).Str("role", v.ActorRole)
	case events.EstimateItemDecided:
		ev = ev.Str("estimate", v.EstimateID).Str("item", v.ItemID).Str("decision", string(v.Decision))
	case events.PaymentRecorded:
		ev = ev.Str("folio", v.Folio).Str("amount", v.Amount.String()).Str("balance", v.NewBalance.String())
	case events.LowStockReached:
		ev = ev.Str("sku", v.SKU).Int("qty", v.Quantity).Int("min_qty", v.MinQuantity)
	}
	ev.Msg("evento")
	return nil
}
