package order

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/order"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/pkg/metrics"
	"github.com/xiebiao/bookrec/pkg/tracing"
)

const tracerName = "bookrec/order"

// BookCache 库存变化后需要失效的图书缓存
type BookCache interface {
	Delete(ctx context.Context, ids ...uint) error
}

// PlaceOrderUseCase 购物车结算下单
type PlaceOrderUseCase struct {
	txManager txn.Manager
	userRepo  user.Repository
	cartRepo  cart.Repository
	bookRepo  book.Repository
	orderRepo order.Repository
	cache     BookCache
	publisher event.Publisher
	log       *zap.Logger
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(
	txManager txn.Manager,
	userRepo user.Repository,
	cartRepo cart.Repository,
	bookRepo book.Repository,
	orderRepo order.Repository,
	cache BookCache,
	publisher event.Publisher,
	log *zap.Logger,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		txManager: txManager,
		userRepo:  userRepo,
		cartRepo:  cartRepo,
		bookRepo:  bookRepo,
		orderRepo: orderRepo,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// Execute 把购物车全部条目转成一个订单
//
// 一个事务内完成:
//  1. 按图书ID升序逐行加锁(固定加锁顺序,避免死锁)
//  2. 全部校验通过后才开始扣库存,任何一本不足都不会有写入
//  3. 创建订单(CONFIRMED)、扣减库存、清空购物车
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, userID uint) (resp *OrderResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "PlaceOrder", attribute.Int64("user.id", int64(userID)))
	defer func() { tracing.EndSpan(span, err) }()

	start := time.Now()
	metrics.OrdersInProgress.Inc()
	defer metrics.OrdersInProgress.Dec()

	var (
		u      *user.User
		placed *order.Order
	)
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		u, err = uc.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		lines, err := uc.cartRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return cart.ErrCartEmpty
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i].BookID < lines[j].BookID })

		books := make(map[uint]*book.Book, len(lines))
		for _, line := range lines {
			b, err := uc.bookRepo.LockByID(ctx, line.BookID)
			if err != nil {
				return err
			}
			books[line.BookID] = b
		}

		items := make([]order.Item, 0, len(lines))
		for _, line := range lines {
			b := books[line.BookID]
			if !b.HasStock(line.Quantity) {
				return b.InsufficientStock(line.Quantity)
			}
			items = append(items, order.Item{
				BookID:   b.ID,
				Title:    b.Title,
				Price:    b.Price,
				ImageURL: b.ImageURL,
				Quantity: line.Quantity,
			})
		}

		o, err := order.NewOrder(order.GenerateOrderNo(), userID, items)
		if err != nil {
			return err
		}
		if err := uc.orderRepo.Create(ctx, o); err != nil {
			return err
		}

		for _, line := range lines {
			if err := uc.bookRepo.UpdateStock(ctx, line.BookID, -line.Quantity); err != nil {
				return err
			}
		}

		if _, err := uc.cartRepo.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		metrics.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		uc.log.Info("下单失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	metrics.OrdersPlacedTotal.Inc()
	metrics.ObserveSince(metrics.OrderPlacementDuration, start)

	bookIDs := make([]uint, len(placed.Items))
	lines := make([]event.OrderLine, len(placed.Items))
	for i, it := range placed.Items {
		bookIDs[i] = it.BookID
		lines[i] = event.OrderLine{BookID: it.BookID, Title: it.Title, Price: it.Price, Quantity: it.Quantity}
	}
	invalidate(ctx, uc.cache, uc.log, bookIDs)

	event.Publish(ctx, uc.publisher, uc.log, event.OrderPlaced{
		OrderID:    placed.ID,
		OrderNo:    placed.OrderNo,
		UserID:     userID,
		Email:      u.Email,
		FullName:   u.FullName,
		Total:      placed.Total,
		Items:      lines,
		OccurredAt: placed.CreatedAt,
	})

	uc.log.Info("下单成功",
		zap.Uint("user_id", userID),
		zap.String("order_no", placed.OrderNo),
		zap.Int64("total", placed.Total),
		zap.Int("items", len(placed.Items)),
	)
	return NewOrderResponse(placed), nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, cart.ErrCartEmpty):
		return "cart_empty"
	case errors.Is(err, book.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, book.ErrBookNotFound), errors.Is(err, user.ErrUserNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// invalidate 删除缓存失败只会让详情页短暂显示旧库存,不影响订单
func invalidate(ctx context.Context, cache BookCache, log *zap.Logger, ids []uint) {
	if cache == nil || len(ids) == 0 {
		return
	}
	if err := cache.Delete(ctx, ids...); err != nil {
		log.Warn("删除图书缓存失败", zap.Uints("book_ids", ids), zap.Error(err))
	}
}
