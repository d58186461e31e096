// notifier 消费订单和注册事件,发送通知
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
	"github.com/xiebiao/bookrec/internal/application/notification"
	"github.com/xiebiao/bookrec/internal/infrastructure/config"
	"github.com/xiebiao/bookrec/pkg/logger"
	"github.com/xiebiao/bookrec/pkg/mq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, syncLog, err := logger.Init(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer syncLog()

	if err := run(cfg, zlog); err != nil {
		zlog.Error("通知服务异常退出", zap.Error(err))
		syncLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if !cfg.RabbitMQ.Enabled {
		return errors.New("rabbitmq.enabled=false,通知服务无事可做")
	}

	consumer, err := mq.NewConsumer(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		"topic",
		cfg.RabbitMQ.Queue,
		[]string{
			event.RoutingOrderPlaced,
			event.RoutingOrderStatusChanged,
			event.RoutingOrderCancelled,
			event.RoutingUserRegistered,
		},
		mq.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer consumer.Close()

	svc := notification.NewService(notification.NewLogSender(log), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("通知服务启动", zap.String("queue", cfg.RabbitMQ.Queue))
	return consumer.Consume(ctx, func(ctx context.Context, msg mq.Message) error {
		err := svc.Handle(ctx, msg.RoutingKey, msg.Body)
		if errors.Is(err, notification.ErrMalformedEvent) {
			return errors.Join(mq.ErrDiscard, err)
		}
		return err
	})
}
