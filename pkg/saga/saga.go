// Package saga 补偿式多步操作
//
// 把一个跨存储的操作拆成若干本地步骤,每步带一个补偿动作;
// 某步失败时按逆序执行已完成步骤的补偿。保证最终一致,不保证隔离性。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/pkg/metrics"
)

// Step Saga中的一步
// Action/Compensate都可以为nil;补偿应当幂等,可能被重试
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 一次Saga执行(非并发安全,每次业务调用新建一个)
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
	logger   *zap.Logger
}

// Option Saga可选项
type Option func(*Saga)

// WithLogger 指定日志(默认zap.L())
func WithLogger(l *zap.Logger) Option {
	return func(s *Saga) { s.logger = l }
}

// NewSaga 创建Saga,name用于日志和指标标签
//
//	s := saga.NewSaga("wishlist_move_to_cart", 5*time.Second)
//	s.AddStep("加入购物车", addToCart, restoreCart)
//	s.AddStep("移出心愿单", removeFromWishlist, readdToWishlist)
//	err := s.Execute(ctx)
func NewSaga(name string, timeout time.Duration, opts ...Option) *Saga {
	s := &Saga{
		name:    name,
		timeout: timeout,
		logger:  zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStep 追加一步,按添加顺序执行、逆序补偿
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行所有步骤
// 返回的错误包裹失败步骤的原始错误(errors.Is可用);补偿失败时一并Join进来
func (s *Saga) Execute(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		metrics.SagaExecutionsTotal.WithLabelValues(s.name, metrics.Result(err)).Inc()
		metrics.ObserveSince(metrics.SagaExecutionDuration.WithLabelValues(s.name), start)
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			stepErr := fmt.Errorf("saga[%s]超时: %w", s.name, ctxErr)
			return errors.Join(stepErr, s.compensate(context.WithoutCancel(ctx)))
		}

		if step.Action != nil {
			if actErr := step.Action(ctx); actErr != nil {
				stepErr := fmt.Errorf("saga[%s]步骤[%d:%s]执行失败: %w", s.name, i, step.Name, actErr)
				// 补偿使用不受超时影响的Context
				return errors.Join(stepErr, s.compensate(context.WithoutCancel(ctx)))
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序补偿;单步补偿失败不中断后续补偿
func (s *Saga) compensate(ctx context.Context) error {
	var errs []error
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}

		err := step.Compensate(ctx)
		metrics.SagaCompensationsTotal.WithLabelValues(s.name, metrics.Result(err)).Inc()
		if err != nil {
			s.logger.Error("saga补偿失败,需人工介入",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("补偿[%s]失败: %w", step.Name, err))
		}
	}

	s.executed = nil
	return errors.Join(errs...)
}
