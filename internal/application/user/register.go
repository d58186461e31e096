package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
	"github.com/xiebiao/bookrec/internal/domain/address"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 用户和默认地址在同一个事务中创建,提交后发布user.registered事件
type RegisterUseCase struct {
	txManager   txn.Manager
	userService user.Service
	userRepo    user.Repository
	addressRepo address.Repository
	publisher   event.Publisher
	log         *zap.Logger
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(
	txManager txn.Manager,
	userService user.Service,
	userRepo user.Repository,
	addressRepo address.Repository,
	publisher event.Publisher,
	log *zap.Logger,
) *RegisterUseCase {
	return &RegisterUseCase{
		txManager:   txManager,
		userService: userService,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		publisher:   publisher,
		log:         log,
	}
}

// Execute 执行注册
// 邮箱重复返回ErrEmailDuplicate,不会留下任何记录
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.register(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	event.Publish(ctx, uc.publisher, uc.log, event.UserRegistered{
		UserID:     u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		OccurredAt: u.CreatedAt,
	})
	uc.log.Info("用户注册", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
	return NewUserInfo(u), nil
}

// EnsureAdmin 启动时调用:账号不存在则创建管理员,已存在则补上管理员角色
// 返回是否做了修改
func (uc *RegisterUseCase) EnsureAdmin(ctx context.Context, req RegisterRequest) (bool, error) {
	existing, err := uc.userRepo.FindByEmail(ctx, user.NormalizeEmail(req.Email))
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return false, nil
		}
		existing.Roles = append(existing.Roles, user.RoleAdmin)
		if err := uc.userRepo.Update(ctx, existing); err != nil {
			return false, err
		}
		uc.log.Info("已授予管理员角色", zap.Uint("user_id", existing.ID), zap.String("email", existing.Email))
		return true, nil
	case !errors.Is(err, user.ErrUserNotFound):
		return false, err
	}

	u, err := uc.register(ctx, req, []string{user.RoleUser, user.RoleAdmin})
	if err != nil {
		return false, err
	}
	uc.log.Info("已创建管理员账号", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
	return true, nil
}

func (uc *RegisterUseCase) register(ctx context.Context, req RegisterRequest, roles []string) (*user.User, error) {
	var u *user.User
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		u, err = uc.userService.Register(ctx, req.Email, req.Password, req.FullName)
		if err != nil {
			return err
		}
		if roles != nil {
			u.Roles = roles
			if err := uc.userRepo.Update(ctx, u); err != nil {
				return err
			}
		}
		return uc.addressRepo.Create(ctx, address.NewDefaultAddress(u.ID))
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// =========================================
// 应用层DTO
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	FullName string
}

// UserInfo 用户信息,不含密码
type UserInfo struct {
	ID        uint     `json:"id"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
}

// NewUserInfo 实体 → DTO
func NewUserInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
