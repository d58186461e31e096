package book

import (
	"context"
)

// Repository 图书仓储接口
type Repository interface {
	Create(ctx context.Context, book *Book) error

	// FindByID 不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByIDs 批量查询,不存在的ID直接忽略
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Book, error)

	Update(ctx context.Context, book *Book) error

	Delete(ctx context.Context, id uint) error

	// List 分页查询,关键词匹配书名或作者(不区分大小写)
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// CountByGenre 分类下的图书数量,删除分类前检查
	CountByGenre(ctx context.Context, genreID uint) (int64, error)

	// LockByID 悲观锁查询(SELECT ... FOR UPDATE),必须在事务内调用
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateStock 原子增减库存,delta为负时库存不足返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error
}

// 排序方式
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortTitle     = "title"
)

// ListParams 列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string
	GenreID  uint
	SortBy   string
}

// Normalize 修正分页参数
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	switch p.SortBy {
	case SortPriceAsc, SortPriceDesc, SortRating, SortTitle:
	default:
		p.SortBy = SortNewest
	}
}
