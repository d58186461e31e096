package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
	"github.com/xiebiao/bookrec/pkg/circuitbreaker"
)

type fakeBroker struct {
	err  error
	keys []string
}

func (b *fakeBroker) Publish(ctx context.Context, routingKey string, _ any) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	b.keys = append(b.keys, routingKey)
	return b.err
}

func TestRabbitPublisher_UsesRoutingKey(t *testing.T) {
	broker := &fakeBroker{}
	p := NewRabbitPublisher(broker, time.Second, zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), event.OrderPlaced{OrderNo: "BR1"}))
	require.NoError(t, p.Publish(context.Background(), event.OrderStatusChanged{To: "CANCELLED"}))
	assert.Equal(t, []string{event.RoutingOrderPlaced, event.RoutingOrderCancelled}, broker.keys)
}

func TestRabbitPublisher_IgnoresCallerCancellation(t *testing.T) {
	broker := &fakeBroker{}
	p := NewRabbitPublisher(broker, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, p.Publish(ctx, event.UserRegistered{}))
}

func TestRabbitPublisher_OpensBreaker(t *testing.T) {
	broker := &fakeBroker{err: errors.New("connection refused")}
	p := NewRabbitPublisher(broker, time.Second, zap.NewNop())

	// 默认连续失败5次熔断
	for i := 0; i < 5; i++ {
		assert.Error(t, p.Publish(context.Background(), event.UserRegistered{}))
	}
	err := p.Publish(context.Background(), event.UserRegistered{})
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
	assert.Len(t, broker.keys, 5)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NewNopPublisher(zap.NewNop()).Publish(context.Background(), event.OrderPlaced{}))
}
