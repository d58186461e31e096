package address

import "context"

// Repository 地址仓储
type Repository interface {
	// Create 用户已有地址时返回错误
	Create(ctx context.Context, addr *Address) error

	// FindByUserID 不存在返回ErrAddressNotFound
	FindByUserID(ctx context.Context, userID uint) (*Address, error)

	Update(ctx context.Context, addr *Address) error

	// DeleteByUserID 没有地址时不报错
	DeleteByUserID(ctx context.Context, userID uint) error
}
