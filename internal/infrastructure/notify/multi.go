package notify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
)

// Multi reparte cada evento a varios publicadores en paralelo. Todos reciben el
// evento aunque alguno falle; se devuelve el primer error.
type Multi []events.Publisher

var _ events.Publisher = Multi(nil)

// Publish implementa events.Publisher.
func (m Multi) Publish(ctx context.Context, e events.Event) error {
	var g errgroup.Group
	for _, p := range m {
		if p == nil {
			continue
		}
		g.Go(func() error { return p.Publish(ctx, e) })
	}
	return g.Wait()
}
