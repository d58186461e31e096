package order

import (
	"time"
)

// Order 订单(聚合根)
// 创建后只有Status会变化;Items是下单时的图书快照,后续改价、删书都不影响
type Order struct {
	ID        uint
	OrderNo   string
	UserID    uint
	Items     []Item
	Total     int64
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item 订单明细快照
type Item struct {
	ID       uint
	OrderID  uint
	BookID   uint
	Title    string
	Price    int64 // 下单时单价(分)
	ImageURL string
	Quantity int
}

// Subtotal 小计
func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// NewOrder 创建订单,初始状态CONFIRMED(下单即扣减库存,无支付环节)
func NewOrder(orderNo string, userID uint, items []Item) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	now := time.Now()
	o := &Order{
		OrderNo:   orderNo,
		UserID:    userID,
		Items:     items,
		Status:    StatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.Total = o.CalculateTotal()
	return o, nil
}

// CalculateTotal 按明细计算总金额
func (o *Order) CalculateTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}

// IsOwnedBy 订单是否属于该用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// CanTransitionTo 状态流转规则:
//   - CANCELLED为终态
//   - 只有CONFIRMED可以取消
//   - 不允许流转到当前状态
//   - 其余流转都允许(管理员纠错)
func (o *Order) CanTransitionTo(target Status) error {
	if !target.Valid() {
		return ErrInvalidOrderStatus
	}
	if o.Status.IsTerminal() {
		if target == StatusCancelled {
			return ErrOrderNotCancellable.WithMessage("订单已取消")
		}
		return ErrInvalidStatusTransition.WithMessage("已取消的订单不能再变更状态")
	}
	if target == o.Status {
		return ErrInvalidStatusTransition.WithMessage("订单已经是" + string(target) + "状态")
	}
	if target == StatusCancelled && o.Status != StatusConfirmed {
		return ErrOrderNotCancellable.WithMessage("当前状态" + string(o.Status) + "不允许取消")
	}
	return nil
}

// TransitionTo 执行状态流转,返回流转前的状态
func (o *Order) TransitionTo(target Status) (Status, error) {
	if err := o.CanTransitionTo(target); err != nil {
		return o.Status, err
	}
	prev := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	return prev, nil
}

// RestoresStock CONFIRMED→CANCELLED时需要归还库存
func RestoresStock(from, to Status) bool {
	return from == StatusConfirmed && to == StatusCancelled
}
