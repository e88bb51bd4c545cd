package events

import (
	"context"
	"sync"
)

// MemoryPublisher guarda los eventos publicados; para tests y modo embebido.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

// Publish implementa Publisher.
func (p *MemoryPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

// Events copia de lo publicado.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Named filtra por nombre de evento.
func (p *MemoryPublisher) Named(name string) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}
