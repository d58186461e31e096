// Package event 领域事件
//
// 事件在事务提交后发布,发布失败只记日志,不影响请求结果。
package event

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/domain/order"
)

// 路由键
const (
	RoutingOrderPlaced        = "order.placed"
	RoutingOrderStatusChanged = "order.status_changed"
	RoutingOrderCancelled     = "order.cancelled"
	RoutingUserRegistered     = "user.registered"
)

// Event 可发布的事件
type Event interface {
	RoutingKey() string
}

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// OrderLine 订单明细摘要
type OrderLine struct {
	BookID   uint   `json:"book_id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// OrderPlaced 下单成功
type OrderPlaced struct {
	OrderID    uint        `json:"order_id"`
	OrderNo    string      `json:"order_no"`
	UserID     uint        `json:"user_id"`
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	Total      int64       `json:"total"`
	Items      []OrderLine `json:"items"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func (OrderPlaced) RoutingKey() string { return RoutingOrderPlaced }

// OrderStatusChanged 订单状态变更,取消单独使用order.cancelled路由键
type OrderStatusChanged struct {
	OrderID    uint      `json:"order_id"`
	OrderNo    string    `json:"order_no"`
	UserID     uint      `json:"user_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e OrderStatusChanged) RoutingKey() string {
	if e.To == string(order.StatusCancelled) {
		return RoutingOrderCancelled
	}
	return RoutingOrderStatusChanged
}

// UserRegistered 注册成功
type UserRegistered struct {
	UserID     uint      `json:"user_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (UserRegistered) RoutingKey() string { return RoutingUserRegistered }

// Publish 逐个发布,失败降级为warn日志
func Publish(ctx context.Context, p Publisher, log *zap.Logger, events ...Event) {
	if p == nil {
		return
	}
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			log.Warn("发布事件失败",
				zap.String("routing_key", e.RoutingKey()),
				zap.Error(err),
			)
		}
	}
}
