package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookrec/internal/domain/address"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

type addressRepository struct {
	baseRepo
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepository{baseRepo{db: db}}
}

func (r *addressRepository) Create(ctx context.Context, a *address.Address) error {
	model := toAddressModel(a)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "用户已有地址")
		}
		return apperrors.Wrap(err, "创建地址失败")
	}
	a.ID = model.ID
	return nil
}

func (r *addressRepository) FindByUserID(ctx context.Context, userID uint) (*address.Address, error) {
	var model AddressModel
	if err := r.getDB(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, address.ErrAddressNotFound
		}
		return nil, apperrors.Wrap(err, "查询地址失败")
	}
	return toAddressEntity(&model), nil
}

func (r *addressRepository) Update(ctx context.Context, a *address.Address) error {
	err := r.getDB(ctx).Model(&AddressModel{}).Where("user_id = ?", a.UserID).Updates(map[string]any{
		"street":     a.Street,
		"city":       a.City,
		"state":      a.State,
		"country":    a.Country,
		"zip_code":   a.ZipCode,
		"phone":      a.Phone,
		"updated_at": a.UpdatedAt,
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新地址失败")
	}
	return nil
}

func (r *addressRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if err := r.getDB(ctx).Where("user_id = ?", userID).Delete(&AddressModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除地址失败")
	}
	return nil
}

func toAddressModel(a *address.Address) *AddressModel {
	return &AddressModel{
		ID:        a.ID,
		UserID:    a.UserID,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		Country:   a.Country,
		ZipCode:   a.ZipCode,
		Phone:     a.Phone,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAddressEntity(m *AddressModel) *address.Address {
	return &address.Address{
		ID:        m.ID,
		UserID:    m.UserID,
		Street:    m.Street,
		City:      m.City,
		State:     m.State,
		Country:   m.Country,
		ZipCode:   m.ZipCode,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
