// Package notify adaptadores de salida para los eventos del taller.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
)

// DefaultChannel canal de Redis donde se publican los eventos.
const DefaultChannel = "reparaciones:events"

var _ events.Publisher = (*RedisPublisher)(nil)

// Envelope lo que viaja por el canal.
type Envelope struct {
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// RedisPublisher publica cada evento con PUBLISH; los suscriptores (correo,
// WhatsApp) viven fuera de este servicio.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("notify: ping redis: %w", err)
	}
	return client, nil
}

// NewRedisPublisher construye el publicador.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Publish implementa events.Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, e events.Event) error {
	body, err := Encode(e)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("notify: publish %s: %w", e.EventName(), err)
	}
	return nil
}

// Encode serializa el evento dentro de su sobre.
func Encode(e events.Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("notify: encode %s: %w", e.EventName(), err)
	}
	return json.Marshal(Envelope{Name: e.EventName(), OccurredAt: e.OccurredAt(), Payload: payload})
}
