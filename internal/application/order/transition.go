package order

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/order"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/pkg/metrics"
	"github.com/xiebiao/bookrec/pkg/tracing"
)

// transition 一次已提交(或待提交)的状态流转
type transition struct {
	order         *order.Order
	from          order.Status
	restoredUnits int
	restoredBooks []uint
}

// statusTransitioner 取消、管理员改状态、注销时批量取消共用的状态流转
type statusTransitioner struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	userRepo  user.Repository
	cache     BookCache
	publisher event.Publisher
	log       *zap.Logger
}

// apply 必须在事务内调用:锁订单行 → 校验流转 → CAS写状态 → 按需归还库存
// authorize非nil时在流转前校验订单归属
func (t *statusTransitioner) apply(ctx context.Context, orderID uint, target order.Status, authorize func(*order.Order) error) (*transition, error) {
	o, err := t.orderRepo.LockByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if authorize != nil {
		if err := authorize(o); err != nil {
			return nil, err
		}
	}
	return t.applyLocked(ctx, o, target)
}

func (t *statusTransitioner) applyLocked(ctx context.Context, o *order.Order, target order.Status) (*transition, error) {
	from, err := o.TransitionTo(target)
	if err != nil {
		return nil, err
	}
	if err := t.orderRepo.UpdateStatus(ctx, o.ID, from, target); err != nil {
		return nil, err
	}

	tr := &transition{order: o, from: from}
	if !order.RestoresStock(from, target) {
		return tr, nil
	}
	for _, item := range o.Items {
		err := t.bookRepo.UpdateStock(ctx, item.BookID, item.Quantity)
		if errors.Is(err, book.ErrBookNotFound) {
			// 图书已下架,这部分库存无处归还
			t.log.Warn("归还库存时图书不存在,已跳过",
				zap.String("order_no", o.OrderNo),
				zap.Uint("book_id", item.BookID),
				zap.Int("quantity", item.Quantity),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		tr.restoredUnits += item.Quantity
		tr.restoredBooks = append(tr.restoredBooks, item.BookID)
	}
	return tr, nil
}

// afterCommit 指标、缓存失效、事件,只在事务提交后执行
func (t *statusTransitioner) afterCommit(ctx context.Context, transitions ...*transition) {
	for _, tr := range transitions {
		o := tr.order
		metrics.OrderStatusTransitionsTotal.WithLabelValues(tr.from.String(), o.Status.String()).Inc()
		if tr.restoredUnits > 0 {
			metrics.StockRestoredUnitsTotal.Add(float64(tr.restoredUnits))
		}
		invalidate(ctx, t.cache, t.log, tr.restoredBooks)

		e := event.OrderStatusChanged{
			OrderID:    o.ID,
			OrderNo:    o.OrderNo,
			UserID:     o.UserID,
			From:       tr.from.String(),
			To:         o.Status.String(),
			OccurredAt: o.UpdatedAt,
		}
		if u, err := t.userRepo.FindByID(ctx, o.UserID); err == nil {
			e.Email = u.Email
			e.FullName = u.FullName
		}
		event.Publish(ctx, t.publisher, t.log, e)

		t.log.Info("订单状态变更",
			zap.String("order_no", o.OrderNo),
			zap.String("from", tr.from.String()),
			zap.String("to", o.Status.String()),
			zap.Int("restored_units", tr.restoredUnits),
		)
	}
}

// TransitionDeps 状态流转用例的公共依赖
type TransitionDeps struct {
	TxManager txn.Manager
	OrderRepo order.Repository
	BookRepo  book.Repository
	UserRepo  user.Repository
	Cache     BookCache
	Publisher event.Publisher
	Log       *zap.Logger
}

func (d TransitionDeps) transitioner() *statusTransitioner {
	return &statusTransitioner{
		orderRepo: d.OrderRepo,
		bookRepo:  d.BookRepo,
		userRepo:  d.UserRepo,
		cache:     d.Cache,
		publisher: d.Publisher,
		log:       d.Log,
	}
}

// CancelOrderUseCase 用户取消自己的订单
type CancelOrderUseCase struct {
	txManager    txn.Manager
	transitioner *statusTransitioner
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(deps TransitionDeps) *CancelOrderUseCase {
	return &CancelOrderUseCase{txManager: deps.TxManager, transitioner: deps.transitioner()}
}

// Execute 只有CONFIRMED可以取消;别人的订单按不存在处理
func (uc *CancelOrderUseCase) Execute(ctx context.Context, userID, orderID uint) (resp *OrderResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CancelOrder",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("order.id", int64(orderID)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	var tr *transition
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		tr, err = uc.transitioner.apply(ctx, orderID, order.StatusCancelled, func(o *order.Order) error {
			if !o.IsOwnedBy(userID) {
				return order.ErrOrderNotFound
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.transitioner.afterCommit(ctx, tr)
	return NewOrderResponse(tr.order), nil
}

// UpdateOrderStatusUseCase 管理员修改订单状态
type UpdateOrderStatusUseCase struct {
	txManager    txn.Manager
	transitioner *statusTransitioner
}

// NewUpdateOrderStatusUseCase 创建修改订单状态用例
func NewUpdateOrderStatusUseCase(deps TransitionDeps) *UpdateOrderStatusUseCase {
	return &UpdateOrderStatusUseCase{txManager: deps.TxManager, transitioner: deps.transitioner()}
}

// Execute status为自由文本,如 "shipped"、"Out for delivery"
func (uc *UpdateOrderStatusUseCase) Execute(ctx context.Context, orderID uint, status string) (resp *OrderResponse, err error) {
	target, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateOrderStatus",
		attribute.Int64("order.id", int64(orderID)),
		attribute.String("order.status", target.String()),
	)
	defer func() { tracing.EndSpan(span, err) }()

	var tr *transition
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		tr, err = uc.transitioner.apply(ctx, orderID, target, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.transitioner.afterCommit(ctx, tr)
	return NewOrderResponse(tr.order), nil
}

// CancelAllOrdersUseCase 注销账号时取消用户全部可取消的订单
type CancelAllOrdersUseCase struct {
	txManager    txn.Manager
	orderRepo    order.Repository
	transitioner *statusTransitioner
}

// NewCancelAllOrdersUseCase 创建批量取消用例
func NewCancelAllOrdersUseCase(deps TransitionDeps) *CancelAllOrdersUseCase {
	return &CancelAllOrdersUseCase{
		txManager:    deps.TxManager,
		orderRepo:    deps.OrderRepo,
		transitioner: deps.transitioner(),
	}
}

// CancelAllResult 批量取消结果,事务提交后调用Finalize
type CancelAllResult struct {
	transitions  []*transition
	transitioner *statusTransitioner
}

// Cancelled 取消的订单数
func (r *CancelAllResult) Cancelled() int {
	return len(r.transitions)
}

// Finalize 发布事件、失效缓存;调用方事务回滚时不要调用
func (r *CancelAllResult) Finalize(ctx context.Context) {
	r.transitioner.afterCommit(ctx, r.transitions...)
}

// Execute 加入调用方的事务(没有则新开一个)
// 非CONFIRMED的订单跳过;任何其他错误中止整个批次
func (uc *CancelAllOrdersUseCase) Execute(ctx context.Context, userID uint) (result *CancelAllResult, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CancelAllOrders", attribute.Int64("user.id", int64(userID)))
	defer func() { tracing.EndSpan(span, err) }()

	result = &CancelAllResult{transitioner: uc.transitioner}
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		orders, err := uc.orderRepo.FindAllByUserID(ctx, userID)
		if err != nil {
			return err
		}
		for _, o := range orders {
			if o.Status != order.StatusConfirmed {
				continue
			}
			locked, err := uc.orderRepo.LockByID(ctx, o.ID)
			if err != nil {
				return err
			}
			if locked.Status != order.StatusConfirmed {
				continue
			}
			tr, err := uc.transitioner.applyLocked(ctx, locked, order.StatusCancelled)
			if err != nil {
				return err
			}
			result.transitions = append(result.transitions, tr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
