package notification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
)

type recordingSender struct {
	sent []Message
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func newTestService() (*Service, *recordingSender) {
	sender := &recordingSender{}
	return NewService(sender, zap.NewNop()), sender
}

func TestHandle_OrderPlaced(t *testing.T) {
	svc, sender := newTestService()
	body, _ := json.Marshal(event.OrderPlaced{
		OrderNo:  "BR20260101120000123456",
		Email:    "reader@example.com",
		FullName: "读者",
		Total:    4650,
		Items:    []event.OrderLine{{Title: "三体", Price: 2325, Quantity: 2}},
	})

	require.NoError(t, svc.Handle(context.Background(), event.RoutingOrderPlaced, body))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "reader@example.com", msg.To)
	assert.Contains(t, msg.Subject, "BR20260101120000123456")
	assert.Contains(t, msg.Body, "46.50")
	assert.Contains(t, msg.Body, "《三体》 x2")
}

func TestHandle_OrderCancelled(t *testing.T) {
	svc, sender := newTestService()
	body, _ := json.Marshal(event.OrderStatusChanged{
		OrderNo: "BR1", Email: "reader@example.com", From: "CONFIRMED", To: "CANCELLED",
	})

	require.NoError(t, svc.Handle(context.Background(), event.RoutingOrderCancelled, body))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "订单已取消")
	assert.Contains(t, sender.sent[0].Body, "CONFIRMED")
}

func TestHandle_Welcome(t *testing.T) {
	svc, sender := newTestService()
	body, _ := json.Marshal(event.UserRegistered{Email: "new@example.com", FullName: "新用户"})

	require.NoError(t, svc.Handle(context.Background(), event.RoutingUserRegistered, body))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "新用户")
}

func TestHandle_Malformed(t *testing.T) {
	svc, sender := newTestService()

	assert.ErrorIs(t, svc.Handle(context.Background(), event.RoutingOrderPlaced, []byte("{")), ErrMalformedEvent)
	assert.ErrorIs(t, svc.Handle(context.Background(), "payment.done", []byte("{}")), ErrMalformedEvent)
	assert.Empty(t, sender.sent)
}

func TestHandle_MissingRecipientIsSkipped(t *testing.T) {
	svc, sender := newTestService()
	body, _ := json.Marshal(event.OrderStatusChanged{OrderNo: "BR1", To: "SHIPPED"})

	require.NoError(t, svc.Handle(context.Background(), event.RoutingOrderStatusChanged, body))
	assert.Empty(t, sender.sent)
}
