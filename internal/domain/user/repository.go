package user

import (
	"context"
)

// Repository 用户仓储接口
type Repository interface {
	// Create 创建用户,邮箱已存在返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 不存在返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	// Delete 物理删除,不存在返回ErrUserNotFound
	Delete(ctx context.Context, id uint) error

	// List 按ID升序分页
	List(ctx context.Context, page, pageSize int) ([]*User, int64, error)
}

// PasswordHasher 密码哈希能力
// Compare在不匹配时返回ErrPasswordMismatch
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hashed, plain string) error
}
