package user

import (
	"context"

	"go.uber.org/zap"

	apporder "github.com/xiebiao/bookrec/internal/application/order"
	"github.com/xiebiao/bookrec/internal/domain/address"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// DeleteAccountUseCase 注销账号(本人或管理员)
//
// 同一事务内依次:取消所有CONFIRMED订单(回补库存) → 清空购物车 → 清空心愿单
// → 删除地址 → 删除用户。历史订单保留。提交后发布订单事件并吊销Token。
type DeleteAccountUseCase struct {
	txManager    txn.Manager
	cancelAll    *apporder.CancelAllOrdersUseCase
	userRepo     user.Repository
	addressRepo  address.Repository
	cartRepo     cart.Repository
	wishlistRepo wishlist.Repository
	sessions     SessionStore
	tokens       TokenIssuer
	log          *zap.Logger
}

// NewDeleteAccountUseCase 创建注销用例
func NewDeleteAccountUseCase(
	txManager txn.Manager,
	cancelAll *apporder.CancelAllOrdersUseCase,
	userRepo user.Repository,
	addressRepo address.Repository,
	cartRepo cart.Repository,
	wishlistRepo wishlist.Repository,
	sessions SessionStore,
	tokens TokenIssuer,
	log *zap.Logger,
) *DeleteAccountUseCase {
	return &DeleteAccountUseCase{
		txManager:    txManager,
		cancelAll:    cancelAll,
		userRepo:     userRepo,
		addressRepo:  addressRepo,
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		sessions:     sessions,
		tokens:       tokens,
		log:          log,
	}
}

// Execute 执行注销
func (uc *DeleteAccountUseCase) Execute(ctx context.Context, userID uint) error {
	var result *apporder.CancelAllResult
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
			return err
		}

		var err error
		if result, err = uc.cancelAll.Execute(ctx, userID); err != nil {
			return err
		}
		if _, err := uc.cartRepo.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if _, err := uc.wishlistRepo.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := uc.addressRepo.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		return uc.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	result.Finalize(ctx)
	if err := uc.sessions.RevokeAll(ctx, userID, uc.tokens.RefreshTokenTTL()); err != nil {
		uc.log.Warn("注销后吊销Token失败", zap.Uint("user_id", userID), zap.Error(err))
	}
	uc.log.Info("账号已注销", zap.Uint("user_id", userID), zap.Int("cancelled_orders", result.Cancelled()))
	return nil
}

// ErrDeleteSelf 管理员不能通过管理接口删除自己
var ErrDeleteSelf = apperrors.New(apperrors.ErrCodeBusinessError, "不能删除当前登录的管理员账号")

// AdminUserUseCase 管理员查看/删除用户
type AdminUserUseCase struct {
	userRepo      user.Repository
	deleteAccount *DeleteAccountUseCase
}

// NewAdminUserUseCase 创建用户管理用例
func NewAdminUserUseCase(userRepo user.Repository, deleteAccount *DeleteAccountUseCase) *AdminUserUseCase {
	return &AdminUserUseCase{userRepo: userRepo, deleteAccount: deleteAccount}
}

// List 按ID升序分页
func (uc *AdminUserUseCase) List(ctx context.Context, page, pageSize int) ([]*UserInfo, int64, error) {
	users, total, err := uc.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	list := make([]*UserInfo, len(users))
	for i, u := range users {
		list[i] = NewUserInfo(u)
	}
	return list, total, nil
}

// Delete 与本人注销走同一流程
func (uc *AdminUserUseCase) Delete(ctx context.Context, operatorID, userID uint) error {
	if operatorID == userID {
		return ErrDeleteSelf
	}
	return uc.deleteAccount.Execute(ctx, userID)
}
