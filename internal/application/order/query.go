package order

import (
	"context"
	"strings"

	"github.com/xiebiao/bookrec/internal/domain/order"
)

// OrderQueryUseCase 订单查询
type OrderQueryUseCase struct {
	orderRepo order.Repository
}

// NewOrderQueryUseCase 创建订单查询用例
func NewOrderQueryUseCase(orderRepo order.Repository) *OrderQueryUseCase {
	return &OrderQueryUseCase{orderRepo: orderRepo}
}

// ListMine 我的订单,按创建时间倒序
func (uc *OrderQueryUseCase) ListMine(ctx context.Context, userID uint, page, pageSize int) ([]*OrderResponse, int64, error) {
	orders, total, err := uc.orderRepo.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return newOrderResponses(orders), total, nil
}

// GetMine 别人的订单返回ErrOrderNotFound,不暴露订单是否存在
func (uc *OrderQueryUseCase) GetMine(ctx context.Context, userID, orderID uint) (*OrderResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, order.ErrOrderNotFound
	}
	return NewOrderResponse(o), nil
}

// ListAll 管理端订单列表,status为空不过滤
func (uc *OrderQueryUseCase) ListAll(ctx context.Context, page, pageSize int, status string) ([]*OrderResponse, int64, error) {
	params := order.ListParams{Page: page, PageSize: pageSize}
	if strings.TrimSpace(status) != "" {
		s, err := order.ParseStatus(status)
		if err != nil {
			return nil, 0, err
		}
		params.Status = s
	}
	orders, total, err := uc.orderRepo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return newOrderResponses(orders), total, nil
}

// Get 管理端订单详情
func (uc *OrderQueryUseCase) Get(ctx context.Context, orderID uint) (*OrderResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderResponse(o), nil
}
