package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookrec/internal/domain/wishlist"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

type wishlistRepository struct {
	baseRepo
}

// NewWishlistRepository 创建心愿单仓储
func NewWishlistRepository(db *gorm.DB) wishlist.Repository {
	return &wishlistRepository{baseRepo{db: db}}
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID uint) ([]*wishlist.Item, error) {
	var models []WishlistItemModel
	if err := r.getDB(ctx).Where("user_id = ?", userID).Order("added_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询心愿单失败")
	}
	items := make([]*wishlist.Item, len(models))
	for i, m := range models {
		items[i] = &wishlist.Item{ID: m.ID, UserID: m.UserID, BookID: m.BookID, AddedAt: m.AddedAt}
	}
	return items, nil
}

// Add 依赖(user_id, book_id)唯一索引实现幂等,重复添加时影响行数为0
func (r *wishlistRepository) Add(ctx context.Context, item *wishlist.Item) (bool, error) {
	model := &WishlistItemModel{UserID: item.UserID, BookID: item.BookID, AddedAt: item.AddedAt}
	result := r.getDB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(model)
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "加入心愿单失败")
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	item.ID = model.ID
	return true, nil
}

func (r *wishlistRepository) Delete(ctx context.Context, userID, bookID uint) error {
	result := r.getDB(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&WishlistItemModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "移出心愿单失败")
	}
	if result.RowsAffected == 0 {
		return wishlist.ErrWishlistItemNotFound
	}
	return nil
}

func (r *wishlistRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.getDB(ctx).Where("user_id = ?", userID).Delete(&WishlistItemModel{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "清空心愿单失败")
	}
	return result.RowsAffected, nil
}

func (r *wishlistRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.getDB(ctx).Model(&WishlistItemModel{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计心愿单失败")
	}
	return count, nil
}

func (r *wishlistRepository) DeleteByBook(ctx context.Context, bookID uint) (int64, error) {
	result := r.getDB(ctx).Where("book_id = ?", bookID).Delete(&WishlistItemModel{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "清理心愿单条目失败")
	}
	return result.RowsAffected, nil
}
