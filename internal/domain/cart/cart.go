// Package cart 购物车
//
// 每个(用户,图书)最多一行,数量始终>=1;数量改为0即删除该行。
package cart

import (
	"context"
	"time"

	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// Item 购物车条目
type Item struct {
	ID        uint
	UserID    uint
	BookID    uint
	Quantity  int
	AddedAt   time.Time
	UpdatedAt time.Time
}

var (
	ErrCartItemNotFound = apperrors.New(apperrors.ErrCodeCartItemNotFound, "购物车中没有这本书")
	ErrCartEmpty        = apperrors.New(apperrors.ErrCodeCartEmpty, "购物车为空")
	ErrInvalidQuantity  = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
)

// NewItem 新条目,数量必须>=1
func NewItem(userID, bookID uint, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &Item{
		UserID:    userID,
		BookID:    bookID,
		Quantity:  quantity,
		AddedAt:   now,
		UpdatedAt: now,
	}, nil
}

// SetQuantity 修改数量,必须>=1
func (i *Item) SetQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	i.Quantity = quantity
	i.UpdatedAt = time.Now()
	return nil
}

// Repository 购物车仓储
type Repository interface {
	// ListByUser 按加入时间升序
	ListByUser(ctx context.Context, userID uint) ([]*Item, error)

	// Find 不存在返回ErrCartItemNotFound
	Find(ctx context.Context, userID, bookID uint) (*Item, error)

	// Save 新建或更新数量
	Save(ctx context.Context, item *Item) error

	// Delete 不存在返回ErrCartItemNotFound
	Delete(ctx context.Context, userID, bookID uint) error

	// DeleteByUser 返回删除行数
	DeleteByUser(ctx context.Context, userID uint) (int64, error)

	CountByUser(ctx context.Context, userID uint) (int64, error)

	// DeleteByBook 图书下架时清理所有用户的该条目
	DeleteByBook(ctx context.Context, bookID uint) (int64, error)
}
