package order

import (
	"context"
)

// Repository 订单仓储接口
type Repository interface {
	// Create 订单和明细在同一事务中写入,回填ID
	Create(ctx context.Context, order *Order) error

	// FindByID 包含明细,不存在返回ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)

	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// LockByID 悲观锁查询(含明细),必须在事务内调用
	LockByID(ctx context.Context, id uint) (*Order, error)

	// UpdateStatus 比较并设置: 只有当前状态为from时才更新为to,否则返回ErrStatusConflict
	UpdateStatus(ctx context.Context, id uint, from, to Status) error

	// ListByUserID 用户订单,按创建时间倒序分页
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)

	// FindAllByUserID 用户全部订单(不分页,用于注销账号)
	FindAllByUserID(ctx context.Context, userID uint) ([]*Order, error)

	// List 管理端查询,status为空表示不过滤
	List(ctx context.Context, params ListParams) ([]*Order, int64, error)
}

// ListParams 管理端订单查询参数
type ListParams struct {
	Page     int
	PageSize int
	Status   Status
}
