package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookrec/internal/domain/cart"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

type cartRepository struct {
	baseRepo
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{baseRepo{db: db}}
}

func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]*cart.Item, error) {
	var models []CartItemModel
	if err := r.getDB(ctx).Where("user_id = ?", userID).Order("added_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	items := make([]*cart.Item, len(models))
	for i := range models {
		items[i] = toCartEntity(&models[i])
	}
	return items, nil
}

func (r *cartRepository) Find(ctx context.Context, userID, bookID uint) (*cart.Item, error) {
	var model CartItemModel
	err := r.getDB(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrCartItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车条目失败")
	}
	return toCartEntity(&model), nil
}

// Save INSERT ... ON DUPLICATE KEY UPDATE quantity, updated_at
func (r *cartRepository) Save(ctx context.Context, item *cart.Item) error {
	model := &CartItemModel{
		ID:        item.ID,
		UserID:    item.UserID,
		BookID:    item.BookID,
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
		UpdatedAt: item.UpdatedAt,
	}
	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return apperrors.Wrap(err, "保存购物车条目失败")
	}
	if item.ID == 0 {
		item.ID = model.ID
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, userID, bookID uint) error {
	result := r.getDB(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&CartItemModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除购物车条目失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.getDB(ctx).Where("user_id = ?", userID).Delete(&CartItemModel{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "清空购物车失败")
	}
	return result.RowsAffected, nil
}

func (r *cartRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.getDB(ctx).Model(&CartItemModel{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计购物车失败")
	}
	return count, nil
}

func (r *cartRepository) DeleteByBook(ctx context.Context, bookID uint) (int64, error) {
	result := r.getDB(ctx).Where("book_id = ?", bookID).Delete(&CartItemModel{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "清理购物车条目失败")
	}
	return result.RowsAffected, nil
}

func toCartEntity(m *CartItemModel) *cart.Item {
	return &cart.Item{
		ID:        m.ID,
		UserID:    m.UserID,
		BookID:    m.BookID,
		Quantity:  m.Quantity,
		AddedAt:   m.AddedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
