package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testOrderEvent struct {
	OrderNo string `json:"order_no"`
	UserID  uint   `json:"user_id"`
	Action  string `json:"action"`
}

// fakeAcknowledger 记录Ack/Nack调用
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func delivery(ack amqp.Acknowledger, redelivered bool) amqp.Delivery {
	body, _ := json.Marshal(testOrderEvent{OrderNo: "ORD1", UserID: 1, Action: "placed"})
	return amqp.Delivery{
		Acknowledger: ack,
		RoutingKey:   "order.placed",
		MessageId:    "m-1",
		Body:         body,
		Redelivered:  redelivered,
	}
}

func TestHandleDelivery(t *testing.T) {
	tests := []struct {
		name        string
		redelivered bool
		handlerErr  error
		wantAck     bool
		wantRequeue bool
	}{
		{name: "成功Ack", wantAck: true},
		{name: "首次失败重新入队", handlerErr: errors.New("smtp timeout"), wantRequeue: true},
		{name: "重投后再失败丢弃", redelivered: true, handlerErr: errors.New("smtp timeout")},
		{name: "ErrDiscard直接丢弃", handlerErr: fmt.Errorf("bad json: %w", ErrDiscard)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			var got Message
			handleDelivery(context.Background(), "q", zap.NewNop(), delivery(ack, tt.redelivered),
				func(ctx context.Context, msg Message) error {
					got = msg
					return tt.handlerErr
				})

			assert.Equal(t, "order.placed", got.RoutingKey)
			assert.Equal(t, "m-1", got.MessageID)
			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, !tt.wantAck, ack.nacked)
			assert.Equal(t, tt.wantRequeue, ack.requeue)
		})
	}
}

// 以下需要真实的RabbitMQ,设置BOOKREC_TEST_AMQP_URL后运行
func amqpURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("BOOKREC_TEST_AMQP_URL")
	if url == "" {
		t.Skip("BOOKREC_TEST_AMQP_URL未设置,跳过RabbitMQ集成测试")
	}
	return url
}

func TestPubSub_Integration(t *testing.T) {
	url := amqpURL(t)

	publisher, err := NewPublisher(url, "bookrec.test.events", "topic")
	require.NoError(t, err)
	defer publisher.Close()

	consumer, err := NewConsumer(url, "bookrec.test.events", "topic", "bookrec.test.queue", []string{"order.*"})
	require.NoError(t, err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var mu sync.Mutex
	received := make([]string, 0)
	done := make(chan error, 1)
	go func() {
		done <- consumer.Consume(ctx, func(ctx context.Context, msg Message) error {
			var event testOrderEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				return fmt.Errorf("%v: %w", err, ErrDiscard)
			}
			mu.Lock()
			received = append(received, event.Action)
			if len(received) == 2 {
				cancel()
			}
			mu.Unlock()
			return nil
		})
	}()

	for _, action := range []string{"placed", "cancelled"} {
		require.NoError(t, publisher.Publish(ctx, "order."+action, testOrderEvent{OrderNo: "ORD1", UserID: 1, Action: action}))
	}

	require.NoError(t, <-done)
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"placed", "cancelled"}, received)
}
