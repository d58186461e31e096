package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/domain/address"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
)

// ProfileUseCase 个人资料、密码、收货地址
type ProfileUseCase struct {
	txManager    txn.Manager
	userService  user.Service
	userRepo     user.Repository
	addressRepo  address.Repository
	cartRepo     cart.Repository
	wishlistRepo wishlist.Repository
	sessions     SessionStore
	tokens       TokenIssuer
	log          *zap.Logger
}

// NewProfileUseCase 创建个人资料用例
func NewProfileUseCase(
	txManager txn.Manager,
	userService user.Service,
	userRepo user.Repository,
	addressRepo address.Repository,
	cartRepo cart.Repository,
	wishlistRepo wishlist.Repository,
	sessions SessionStore,
	tokens TokenIssuer,
	log *zap.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		txManager:    txManager,
		userService:  userService,
		userRepo:     userRepo,
		addressRepo:  addressRepo,
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		sessions:     sessions,
		tokens:       tokens,
		log:          log,
	}
}

// Get 资料 + 购物车/心愿单数量
func (uc *ProfileUseCase) Get(ctx context.Context, userID uint) (*ProfileResponse, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	cartCount, err := uc.cartRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	wishlistCount, err := uc.wishlistRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{
		UserInfo:      *NewUserInfo(u),
		Username:      u.Email,
		CartCount:     cartCount,
		WishlistCount: wishlistCount,
	}, nil
}

// UpdateFullName 只允许修改姓名
func (uc *ProfileUseCase) UpdateFullName(ctx context.Context, userID uint, fullName string) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.UpdateFullName(fullName); err != nil {
		return nil, err
	}
	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return NewUserInfo(u), nil
}

// ChangePassword 改密成功后吊销此前签发的所有Token,需要重新登录
func (uc *ProfileUseCase) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if err := uc.userService.ChangePassword(ctx, userID, currentPassword, newPassword); err != nil {
		return err
	}
	if err := uc.sessions.RevokeAll(ctx, userID, uc.tokens.RefreshTokenTTL()); err != nil {
		uc.log.Error("改密后吊销Token失败", zap.Uint("user_id", userID), zap.Error(err))
		return err
	}
	uc.log.Info("用户修改密码", zap.Uint("user_id", userID))
	return nil
}

// GetAddress 获取收货地址
func (uc *ProfileUseCase) GetAddress(ctx context.Context, userID uint) (*AddressResponse, error) {
	addr, err := uc.addressRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewAddressResponse(addr), nil
}

// SaveAddress 整体覆盖;没有地址时新建
func (uc *ProfileUseCase) SaveAddress(ctx context.Context, userID uint, fields address.Fields) (*AddressResponse, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	var addr *address.Address
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
			return err
		}
		var err error
		addr, err = uc.addressRepo.FindByUserID(ctx, userID)
		switch {
		case errors.Is(err, address.ErrAddressNotFound):
			addr = address.NewDefaultAddress(userID)
			if err := addr.Apply(fields); err != nil {
				return err
			}
			return uc.addressRepo.Create(ctx, addr)
		case err != nil:
			return err
		}
		if err := addr.Apply(fields); err != nil {
			return err
		}
		return uc.addressRepo.Update(ctx, addr)
	})
	if err != nil {
		return nil, err
	}
	return NewAddressResponse(addr), nil
}

// =========================================
// 应用层DTO
// =========================================

// ProfileResponse 个人资料,Username即登录邮箱
type ProfileResponse struct {
	UserInfo
	Username      string `json:"username"`
	CartCount     int64  `json:"cart_count"`
	WishlistCount int64  `json:"wishlist_count"`
}

// AddressResponse 收货地址
type AddressResponse struct {
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	ZipCode   string `json:"zip_code"`
	Phone     string `json:"phone"`
	UpdatedAt string `json:"updated_at"`
}

// NewAddressResponse 实体 → DTO
func NewAddressResponse(a *address.Address) *AddressResponse {
	return &AddressResponse{
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		Country:   a.Country,
		ZipCode:   a.ZipCode,
		Phone:     a.Phone,
		UpdatedAt: a.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
