// Package wishlist 心愿单
package wishlist

import (
	"context"
	"time"

	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// Item 心愿单条目,(用户,图书)唯一
type Item struct {
	ID      uint
	UserID  uint
	BookID  uint
	AddedAt time.Time
}

var ErrWishlistItemNotFound = apperrors.New(apperrors.ErrCodeWishlistItemNotFound, "心愿单中没有这本书")

// NewItem 新条目
func NewItem(userID, bookID uint) *Item {
	return &Item{UserID: userID, BookID: bookID, AddedAt: time.Now()}
}

// Repository 心愿单仓储
type Repository interface {
	// ListByUser 按加入时间升序
	ListByUser(ctx context.Context, userID uint) ([]*Item, error)

	// Add 已存在时不报错也不重复插入,返回是否新插入
	Add(ctx context.Context, item *Item) (bool, error)

	// Delete 不存在返回ErrWishlistItemNotFound
	Delete(ctx context.Context, userID, bookID uint) error

	// DeleteByUser 返回删除行数
	DeleteByUser(ctx context.Context, userID uint) (int64, error)

	CountByUser(ctx context.Context, userID uint) (int64, error)

	// DeleteByBook 图书下架时清理所有用户的该条目
	DeleteByBook(ctx context.Context, bookID uint) (int64, error)
}
