package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/xiebiao/bookrec/internal/domain/order"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

type orderRepository struct {
	store *Store
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(store *Store) order.Repository {
	return &orderRepository{store: store}
}

func cloneOrder(o order.Order) *order.Order {
	o.Items = slices.Clone(o.Items)
	return &o
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	defer r.store.lock(ctx)()
	t := r.store.t
	for _, existing := range t.orders {
		if existing.OrderNo == o.OrderNo {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单号冲突")
		}
	}
	now := time.Now()
	o.ID = t.nextID("orders")
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
	for i := range o.Items {
		o.Items[i].ID = t.nextID("order_items")
		o.Items[i].OrderID = o.ID
	}
	t.orders[o.ID] = *cloneOrder(*o)
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	defer r.store.lock(ctx)()
	o, ok := r.store.t.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	defer r.store.lock(ctx)()
	for _, o := range r.store.t.orders {
		if o.OrderNo == orderNo {
			return cloneOrder(o), nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, from, to order.Status) error {
	defer r.store.lock(ctx)()
	o, ok := r.store.t.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	if o.Status != from {
		return order.ErrStatusConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	r.store.t.orders[id] = o
	return nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	defer r.store.lock(ctx)()
	return r.list(func(o order.Order) bool { return o.UserID == userID }, page, pageSize)
}

func (r *orderRepository) FindAllByUserID(ctx context.Context, userID uint) ([]*order.Order, error) {
	defer r.store.lock(ctx)()
	orders := make([]*order.Order, 0)
	for _, o := range r.store.t.orders {
		if o.UserID == userID {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (r *orderRepository) List(ctx context.Context, params order.ListParams) ([]*order.Order, int64, error) {
	defer r.store.lock(ctx)()
	return r.list(func(o order.Order) bool {
		return params.Status == "" || o.Status == params.Status
	}, params.Page, params.PageSize)
}

// list 按创建时间倒序,调用方持有锁
func (r *orderRepository) list(match func(order.Order) bool, page, pageSize int) ([]*order.Order, int64, error) {
	orders := make([]*order.Order, 0)
	for _, o := range r.store.t.orders {
		if match(o) {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	start, end := paginate(len(orders), page, pageSize)
	return orders[start:end], int64(len(orders)), nil
}
