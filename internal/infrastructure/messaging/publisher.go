// Package messaging 事件发布实现
package messaging

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
	"github.com/xiebiao/bookrec/pkg/circuitbreaker"
)

// MessagePublisher 底层消息发布能力,*mq.Publisher实现了它
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// RabbitPublisher 经熔断器发布事件到RabbitMQ
// Broker不可用时熔断器打开,请求直接失败,不会拖慢下单接口
type RabbitPublisher struct {
	publisher MessagePublisher
	breaker   *circuitbreaker.CircuitBreaker
	timeout   time.Duration
	log       *zap.Logger
}

// NewRabbitPublisher 创建事件发布者,timeout<=0时默认3秒
func NewRabbitPublisher(publisher MessagePublisher, timeout time.Duration, log *zap.Logger) *RabbitPublisher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	breaker := circuitbreaker.NewCircuitBreaker("rabbitmq-publisher", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Warn("熔断器状态变化",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})
	return &RabbitPublisher{publisher: publisher, breaker: breaker, timeout: timeout, log: log}
}

func (p *RabbitPublisher) Publish(ctx context.Context, e event.Event) error {
	// 事件在请求结束后发布,不继承请求的取消信号
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	return p.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		return p.publisher.Publish(ctx, e.RoutingKey(), e)
	})
}

// NopPublisher 未启用RabbitMQ时使用,只记debug日志
type NopPublisher struct {
	log *zap.Logger
}

// NewNopPublisher 创建空发布者
func NewNopPublisher(log *zap.Logger) *NopPublisher {
	return &NopPublisher{log: log}
}

func (p *NopPublisher) Publish(_ context.Context, e event.Event) error {
	p.log.Debug("消息队列未启用,事件已丢弃", zap.String("routing_key", e.RoutingKey()))
	return nil
}
