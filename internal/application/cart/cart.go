// Package cart 购物车用例
package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/pkg/metrics"
)

// CartItemResponse 购物车条目(带图书信息)
type CartItemResponse struct {
	BookID    uint   `json:"book_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ImageURL  string `json:"image_url"`
	Price     int64  `json:"price"`
	Stock     int    `json:"stock"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
	AddedAt   string `json:"added_at"`
	PriceYuan string `json:"price_yuan"`
}

// CartResponse 购物车
type CartResponse struct {
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	Total         int64              `json:"total"`
	TotalYuan     string             `json:"total_yuan"`
}

// CartUseCase 购物车增删改查,每个写操作一个事务
type CartUseCase struct {
	txManager txn.Manager
	cartRepo  cart.Repository
	bookRepo  book.Repository
	log       *zap.Logger
}

// NewCartUseCase 创建购物车用例
func NewCartUseCase(txManager txn.Manager, cartRepo cart.Repository, bookRepo book.Repository, log *zap.Logger) *CartUseCase {
	return &CartUseCase{txManager: txManager, cartRepo: cartRepo, bookRepo: bookRepo, log: log}
}

// List 已下架的图书不展示
func (uc *CartUseCase) List(ctx context.Context, userID uint) (*CartResponse, error) {
	lines, err := uc.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(lines))
	for i, line := range lines {
		ids[i] = line.BookID
	}
	books, err := uc.bookRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &CartResponse{Items: make([]CartItemResponse, 0, len(lines))}
	for _, line := range lines {
		b, ok := books[line.BookID]
		if !ok {
			continue
		}
		subtotal := b.Price * int64(line.Quantity)
		resp.Items = append(resp.Items, CartItemResponse{
			BookID:    b.ID,
			Title:     b.Title,
			Author:    b.Author,
			ImageURL:  b.ImageURL,
			Price:     b.Price,
			Stock:     b.Stock,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
			AddedAt:   line.AddedAt.Format("2006-01-02 15:04:05"),
			PriceYuan: yuan(b.Price),
		})
		resp.TotalQuantity += line.Quantity
		resp.Total += subtotal
	}
	resp.TotalYuan = yuan(resp.Total)
	return resp, nil
}

// Add 加入购物车;已有该书时累加数量,累加后不能超过库存
// 先锁图书行再读购物车条目,同一本书的并发修改在这里排队
func (uc *CartUseCase) Add(ctx context.Context, userID, bookID uint, quantity int) (*cart.Item, error) {
	if quantity < 1 {
		return nil, cart.ErrInvalidQuantity
	}

	var item *cart.Item
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		b, err := uc.bookRepo.LockByID(ctx, bookID)
		if err != nil {
			return err
		}

		existing, err := uc.cartRepo.Find(ctx, userID, bookID)
		switch {
		case err == nil:
			if err := existing.SetQuantity(existing.Quantity + quantity); err != nil {
				return err
			}
			item = existing
		case errors.Is(err, cart.ErrCartItemNotFound):
			if item, err = cart.NewItem(userID, bookID, quantity); err != nil {
				return err
			}
		default:
			return err
		}

		if item.Quantity > b.Stock {
			return b.InsufficientStock(item.Quantity)
		}
		return uc.cartRepo.Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	metrics.CartOperationsTotal.WithLabelValues("add").Inc()
	return item, nil
}

// Update 数量为0等同于移除,返回(nil, nil);负数拒绝
func (uc *CartUseCase) Update(ctx context.Context, userID, bookID uint, quantity int) (*cart.Item, error) {
	if quantity < 0 {
		return nil, cart.ErrInvalidQuantity
	}
	if quantity == 0 {
		if err := uc.Remove(ctx, userID, bookID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var item *cart.Item
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		b, err := uc.bookRepo.LockByID(ctx, bookID)
		if err != nil {
			return err
		}
		item, err = uc.cartRepo.Find(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if quantity > b.Stock {
			return b.InsufficientStock(quantity)
		}
		if err := item.SetQuantity(quantity); err != nil {
			return err
		}
		return uc.cartRepo.Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	metrics.CartOperationsTotal.WithLabelValues("update").Inc()
	return item, nil
}

// Remove 条目不存在返回ErrCartItemNotFound
func (uc *CartUseCase) Remove(ctx context.Context, userID, bookID uint) error {
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		return uc.cartRepo.Delete(ctx, userID, bookID)
	})
	if err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("remove").Inc()
	return nil
}

// Clear 返回删除的条目数
func (uc *CartUseCase) Clear(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = uc.cartRepo.DeleteByUser(ctx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}
	metrics.CartOperationsTotal.WithLabelValues("clear").Inc()
	uc.log.Debug("清空购物车", zap.Uint("user_id", userID), zap.Int64("removed", n))
	return n, nil
}

func yuan(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
