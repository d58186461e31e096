package order

import (
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// 订单领域错误
var (
	ErrOrderNotFound           = apperrors.ErrOrderNotFound
	ErrInvalidOrderStatus      = apperrors.ErrInvalidOrderStatus
	ErrOrderNotCancellable     = apperrors.New(apperrors.ErrCodeOrderNotCancellable, "订单不可取消")
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidStatusTransition, "订单状态不允许此操作")

	// ErrStatusConflict 状态在读取后被并发修改(CAS失败)
	ErrStatusConflict = apperrors.New(apperrors.ErrCodeInvalidStatusTransition, "订单状态已变更,请刷新后重试")

	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")
	ErrInvalidQuantity   = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
)
