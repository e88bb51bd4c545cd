package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/infrastructure/notify"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

var sample = events.OrderStatusChanged{
	OrderID: "o1",
	Folio:   "SR-0007-2026",
	From:    entity.StatusReadyPickup,
	To:      entity.StatusDelivered,
	At:      time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
}

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	client, err := notify.NewRedisClient(ctx, mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	sub := client.Subscribe(ctx, notify.DefaultChannel)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, notify.NewRedisPublisher(client, "").Publish(ctx, sample))

	select {
	case msg := <-sub.Channel():
		var env notify.Envelope
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, events.NameOrderStatusChanged, env.Name)
		assert.True(t, sample.At.Equal(env.OccurredAt))
		assert.Contains(t, string(env.Payload), "SR-0007-2026")
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el mensaje")
	}
}

func TestNewRedisClient_SinServidor(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := notify.NewRedisClient(context.Background(), addr)
	assert.Error(t, err)
}

func TestRedisPublisher_ErrorDeConexion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	err := notify.NewRedisPublisher(client, "otro").Publish(context.Background(), sample)
	require.Error(t, err)
	assert.Contains(t, err.Error(), events.NameOrderStatusChanged)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := notify.NewLogPublisher(logger.NewWithWriter(&buf, "info"))
	require.NoError(t, p.Publish(context.Background(), sample))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, events.NameOrderStatusChanged, line["event"])
	assert.Equal(t, "SR-0007-2026", line["folio"])
	assert.Equal(t, "DONE", line["to"])
}

type failing struct{}

func (failing) Publish(context.Context, events.Event) error { return errors.New("caído") }

func TestMulti_TodosRecibenAunqueUnoFalle(t *testing.T) {
	mem := &events.MemoryPublisher{}
	err := notify.Multi{failing{}, mem, nil}.Publish(context.Background(), sample)
	assert.EqualError(t, err, "caído")
	assert.Len(t, mem.Events(), 1)
}
