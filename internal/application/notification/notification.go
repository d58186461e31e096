// Package notification 通知服务
//
// 消费订单、用户事件,渲染成消息后交给Sender投递。
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/template"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
)

// ErrMalformedEvent 消息体无法解析或路由键未知,重试也不会成功
var ErrMalformedEvent = errors.New("malformed event")

// Message 待投递的消息
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender 投递通道(邮件、短信等)
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender 只写日志的投递通道
type LogSender struct {
	log *zap.Logger
}

// NewLogSender 创建日志投递通道
func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("发送通知",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(
		`{{.FullName}},您好:
您的订单 {{.OrderNo}} 已确认,共{{len .Items}}种图书,合计{{yuan .Total}}元。
{{range .Items}}  - 《{{.Title}}》 x{{.Quantity}}  {{yuan .Price}}元
{{end}}`))

	statusTmpl = template.Must(template.New("status").Parse(
		`{{.FullName}},您好:
您的订单 {{.OrderNo}} 状态已由 {{.From}} 变更为 {{.To}}。`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(
		`{{.FullName}},欢迎加入!您现在可以浏览图书、收藏心愿单并下单购买。`))

	funcs = template.FuncMap{
		"yuan": func(cents int64) string { return fmt.Sprintf("%d.%02d", cents/100, cents%100) },
	}
)

// Service 通知服务
type Service struct {
	sender Sender
	log    *zap.Logger
}

// NewService 创建通知服务
func NewService(sender Sender, log *zap.Logger) *Service {
	return &Service{sender: sender, log: log}
}

// Handle 按路由键分发一条事件消息
func (s *Service) Handle(ctx context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case event.RoutingOrderPlaced:
		var e event.OrderPlaced
		if err := json.Unmarshal(body, &e); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return s.SendOrderConfirmation(ctx, e)
	case event.RoutingOrderStatusChanged, event.RoutingOrderCancelled:
		var e event.OrderStatusChanged
		if err := json.Unmarshal(body, &e); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return s.SendOrderStatusUpdate(ctx, e)
	case event.RoutingUserRegistered:
		var e event.UserRegistered
		if err := json.Unmarshal(body, &e); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return s.SendWelcome(ctx, e)
	default:
		return fmt.Errorf("%w: unknown routing key %q", ErrMalformedEvent, routingKey)
	}
}

// SendOrderConfirmation 下单确认
func (s *Service) SendOrderConfirmation(ctx context.Context, e event.OrderPlaced) error {
	return s.deliver(ctx, e.Email, "订单确认 "+e.OrderNo, confirmationTmpl, e)
}

// SendOrderStatusUpdate 订单状态变更
func (s *Service) SendOrderStatusUpdate(ctx context.Context, e event.OrderStatusChanged) error {
	subject := "订单状态更新 " + e.OrderNo
	if e.RoutingKey() == event.RoutingOrderCancelled {
		subject = "订单已取消 " + e.OrderNo
	}
	return s.deliver(ctx, e.Email, subject, statusTmpl, e)
}

// SendWelcome 注册欢迎
func (s *Service) SendWelcome(ctx context.Context, e event.UserRegistered) error {
	return s.deliver(ctx, e.Email, "欢迎注册", welcomeTmpl, e)
}

func (s *Service) deliver(ctx context.Context, to, subject string, tmpl *template.Template, data any) error {
	// 用户已注销时事件里没有邮箱
	if to == "" {
		s.log.Warn("通知缺少收件人,已跳过", zap.String("subject", subject))
		return nil
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrMalformedEvent, tmpl.Name(), err)
	}
	return s.sender.Send(ctx, Message{To: to, Subject: subject, Body: buf.String()})
}
