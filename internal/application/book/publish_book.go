package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/genre"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
)

// BookRequest 创建/修改图书
type BookRequest struct {
	Title       string
	Author      string
	Description string
	GenreID     uint
	Price       int64 // 价格(分)
	ImageURL    string
	Rating      float64
	Stock       int
}

func (r BookRequest) fields() book.Fields {
	return book.Fields{
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		GenreID:     r.GenreID,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Rating:      r.Rating,
		Stock:       r.Stock,
	}
}

// CatalogAdminUseCase 管理员维护图书和分类
type CatalogAdminUseCase struct {
	txManager    txn.Manager
	bookRepo     book.Repository
	genreRepo    genre.Repository
	cartRepo     cart.Repository
	wishlistRepo wishlist.Repository
	cache        Cache
	log          *zap.Logger
}

// NewCatalogAdminUseCase 创建目录管理用例
func NewCatalogAdminUseCase(
	txManager txn.Manager,
	bookRepo book.Repository,
	genreRepo genre.Repository,
	cartRepo cart.Repository,
	wishlistRepo wishlist.Repository,
	cache Cache,
	log *zap.Logger,
) *CatalogAdminUseCase {
	return &CatalogAdminUseCase{
		txManager:    txManager,
		bookRepo:     bookRepo,
		genreRepo:    genreRepo,
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		cache:        cache,
		log:          log,
	}
}

// CreateBook 分类必须存在
func (uc *CatalogAdminUseCase) CreateBook(ctx context.Context, req BookRequest) (*BookResponse, error) {
	b, err := book.NewBook(req.fields())
	if err != nil {
		return nil, err
	}
	g, err := uc.genreRepo.FindByID(ctx, req.GenreID)
	if err != nil {
		return nil, err
	}
	if err := uc.bookRepo.Create(ctx, b); err != nil {
		return nil, err
	}
	b.Genre = g.Tag

	uc.log.Info("图书上架", zap.Uint("book_id", b.ID), zap.String("title", b.Title))
	return NewBookResponse(b), nil
}

// UpdateBook 覆盖图书信息(库存除外,见AdjustStock),之后删除缓存
func (uc *CatalogAdminUseCase) UpdateBook(ctx context.Context, id uint, req BookRequest) (*BookResponse, error) {
	var b *book.Book
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = uc.bookRepo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := b.Update(req.fields()); err != nil {
			return err
		}
		g, err := uc.genreRepo.FindByID(ctx, req.GenreID)
		if err != nil {
			return err
		}
		b.Genre = g.Tag
		return uc.bookRepo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	uc.evict(ctx, id)
	return NewBookResponse(b), nil
}

// DeleteBook 下架图书,同时清理所有购物车和心愿单中的该书;历史订单快照不受影响
func (uc *CatalogAdminUseCase) DeleteBook(ctx context.Context, id uint) error {
	var cartLines, wishlistLines int64
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.bookRepo.LockByID(ctx, id); err != nil {
			return err
		}
		var err error
		if cartLines, err = uc.cartRepo.DeleteByBook(ctx, id); err != nil {
			return err
		}
		if wishlistLines, err = uc.wishlistRepo.DeleteByBook(ctx, id); err != nil {
			return err
		}
		return uc.bookRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.evict(ctx, id)
	uc.log.Info("图书下架",
		zap.Uint("book_id", id),
		zap.Int64("cart_lines_removed", cartLines),
		zap.Int64("wishlist_lines_removed", wishlistLines),
	)
	return nil
}

// AdjustStock 按增量调整库存,结果为负时返回ErrInsufficientStock
func (uc *CatalogAdminUseCase) AdjustStock(ctx context.Context, id uint, delta int) (*BookResponse, error) {
	var b *book.Book
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if err := uc.bookRepo.UpdateStock(ctx, id, delta); err != nil {
			return err
		}
		var err error
		b, err = uc.bookRepo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.evict(ctx, id)
	uc.log.Info("调整库存", zap.Uint("book_id", id), zap.Int("delta", delta), zap.Int("stock", b.Stock))
	return NewBookResponse(b), nil
}

// CreateGenre Tag不区分大小写唯一
func (uc *CatalogAdminUseCase) CreateGenre(ctx context.Context, tag string) (*GenreResponse, error) {
	g, err := genre.NewGenre(tag)
	if err != nil {
		return nil, err
	}
	if existing, err := uc.genreRepo.FindByTag(ctx, g.Tag); err == nil && existing != nil {
		return nil, genre.ErrGenreDuplicate
	}
	if err := uc.genreRepo.Create(ctx, g); err != nil {
		return nil, err
	}
	return &GenreResponse{ID: g.ID, Tag: g.Tag}, nil
}

// DeleteGenre 仍有图书引用时返回ErrGenreInUse
func (uc *CatalogAdminUseCase) DeleteGenre(ctx context.Context, id uint) error {
	return uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.genreRepo.FindByID(ctx, id); err != nil {
			return err
		}
		n, err := uc.bookRepo.CountByGenre(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return genre.ErrGenreInUse
		}
		return uc.genreRepo.Delete(ctx, id)
	})
}

func (uc *CatalogAdminUseCase) evict(ctx context.Context, ids ...uint) {
	if err := uc.cache.Delete(ctx, ids...); err != nil {
		uc.log.Warn("删除图书缓存失败", zap.Uints("book_ids", ids), zap.Error(err))
	}
}
