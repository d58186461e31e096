// Package wishlist 心愿单用例
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	appcart "github.com/xiebiao/bookrec/internal/application/cart"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
	"github.com/xiebiao/bookrec/pkg/saga"
	"github.com/xiebiao/bookrec/pkg/tracing"
)

const moveToCartTimeout = 10 * time.Second

// WishlistItemResponse 心愿单条目(带图书信息)
type WishlistItemResponse struct {
	BookID    uint    `json:"book_id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	ImageURL  string  `json:"image_url"`
	Price     int64   `json:"price"`
	PriceYuan string  `json:"price_yuan"`
	Rating    float64 `json:"rating"`
	InStock   bool    `json:"in_stock"`
	AddedAt   string  `json:"added_at"`
}

// WishlistUseCase 心愿单
type WishlistUseCase struct {
	txManager    txn.Manager
	wishlistRepo wishlist.Repository
	cartRepo     cart.Repository
	bookRepo     book.Repository
	cart         *appcart.CartUseCase
	log          *zap.Logger
}

// NewWishlistUseCase 创建心愿单用例
func NewWishlistUseCase(
	txManager txn.Manager,
	wishlistRepo wishlist.Repository,
	cartRepo cart.Repository,
	bookRepo book.Repository,
	cartUseCase *appcart.CartUseCase,
	log *zap.Logger,
) *WishlistUseCase {
	return &WishlistUseCase{
		txManager:    txManager,
		wishlistRepo: wishlistRepo,
		cartRepo:     cartRepo,
		bookRepo:     bookRepo,
		cart:         cartUseCase,
		log:          log,
	}
}

// List 已下架的图书不展示
func (uc *WishlistUseCase) List(ctx context.Context, userID uint) ([]WishlistItemResponse, error) {
	items, err := uc.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.BookID
	}
	books, err := uc.bookRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	list := make([]WishlistItemResponse, 0, len(items))
	for _, it := range items {
		b, ok := books[it.BookID]
		if !ok {
			continue
		}
		list = append(list, WishlistItemResponse{
			BookID:    b.ID,
			Title:     b.Title,
			Author:    b.Author,
			ImageURL:  b.ImageURL,
			Price:     b.Price,
			PriceYuan: fmt.Sprintf("%.2f", float64(b.Price)/100),
			Rating:    b.Rating,
			InStock:   b.Stock > 0,
			AddedAt:   it.AddedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return list, nil
}

// Add 重复添加不报错,返回是否新加入
func (uc *WishlistUseCase) Add(ctx context.Context, userID, bookID uint) (bool, error) {
	var added bool
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
			return err
		}
		var err error
		added, err = uc.wishlistRepo.Add(ctx, wishlist.NewItem(userID, bookID))
		return err
	})
	return added, err
}

// Remove 不在心愿单中返回ErrWishlistItemNotFound
func (uc *WishlistUseCase) Remove(ctx context.Context, userID, bookID uint) error {
	return uc.wishlistRepo.Delete(ctx, userID, bookID)
}

// Clear 返回删除的条目数
func (uc *WishlistUseCase) Clear(ctx context.Context, userID uint) (int64, error) {
	return uc.wishlistRepo.DeleteByUser(ctx, userID)
}

// MoveToCart 把心愿单中的书加入购物车并从心愿单移除
//
// 两步各自提交,由Saga保证失败时撤销已完成的步骤:
//
//	加入购物车  ←补偿→ 恢复原数量或删除该行
//	移出心愿单  ←补偿→ 重新加入
func (uc *WishlistUseCase) MoveToCart(ctx context.Context, userID, bookID uint, quantity int) (err error) {
	ctx, span := tracing.StartSpan(ctx, "bookrec/wishlist", "MoveToCart",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("book.id", int64(bookID)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	original, err := uc.find(ctx, userID, bookID)
	if err != nil {
		return err
	}

	prevQuantity := 0
	prev, err := uc.cartRepo.Find(ctx, userID, bookID)
	switch {
	case err == nil:
		prevQuantity = prev.Quantity
	case !errors.Is(err, cart.ErrCartItemNotFound):
		return err
	}

	s := saga.NewSaga("move-to-cart", moveToCartTimeout, saga.WithLogger(uc.log))
	s.AddStep("加入购物车",
		func(ctx context.Context) error {
			_, err := uc.cart.Add(ctx, userID, bookID, quantity)
			return err
		},
		func(ctx context.Context) error {
			return uc.restoreCartLine(ctx, userID, bookID, prevQuantity)
		},
	)
	s.AddStep("移出心愿单",
		func(ctx context.Context) error {
			return uc.wishlistRepo.Delete(ctx, userID, bookID)
		},
		func(ctx context.Context) error {
			restored := *original
			_, err := uc.wishlistRepo.Add(ctx, &restored)
			return err
		},
	)

	if err := s.Execute(ctx); err != nil {
		return err
	}
	uc.log.Info("心愿单移入购物车",
		zap.Uint("user_id", userID),
		zap.Uint("book_id", bookID),
		zap.Int("quantity", quantity),
	)
	return nil
}

// restoreCartLine 和购物车写操作一样先锁图书行
func (uc *WishlistUseCase) restoreCartLine(ctx context.Context, userID, bookID uint, quantity int) error {
	return uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.bookRepo.LockByID(ctx, bookID); err != nil && !errors.Is(err, book.ErrBookNotFound) {
			return err
		}
		if quantity == 0 {
			err := uc.cartRepo.Delete(ctx, userID, bookID)
			if errors.Is(err, cart.ErrCartItemNotFound) {
				return nil
			}
			return err
		}
		item, err := uc.cartRepo.Find(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if err := item.SetQuantity(quantity); err != nil {
			return err
		}
		return uc.cartRepo.Save(ctx, item)
	})
}

func (uc *WishlistUseCase) find(ctx context.Context, userID, bookID uint) (*wishlist.Item, error) {
	items, err := uc.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.BookID == bookID {
			return it, nil
		}
	}
	return nil, wishlist.ErrWishlistItemNotFound
}
