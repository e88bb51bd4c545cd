package events

import (
	"context"

	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

// Publisher puerto de salida hacia la capa de notificaciones.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Dispatcher publica lo acumulado en un Recorder tras el Commit.
// Un fallo de publicación no revierte la operación ya confirmada: se registra
// en el log con el nombre del evento y se devuelve al caller para que decida.
type Dispatcher struct {
	pub Publisher
	log *logger.Logger
}

// NewDispatcher construye el dispatcher. pub nil descarta los eventos.
func NewDispatcher(pub Publisher, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{pub: pub, log: log}
}

// Dispatch publica en orden; sigue con los demás si uno falla.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *Recorder) int {
	if d == nil || d.pub == nil {
		return 0
	}
	failed := 0
	for _, e := range rec.Events() {
		if err := d.pub.Publish(ctx, e); err != nil {
			failed++
			d.log.Warn().Err(err).Str("event", e.EventName()).Msg("publicar evento")
		}
	}
	return failed
}
