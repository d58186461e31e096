package book

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/genre"
)

// 首页每个分类最多展示的图书数
const defaultSectionSize = 8

// Cache 图书详情缓存
type Cache interface {
	// Get 未命中返回(nil, nil)
	Get(ctx context.Context, id uint) (*book.Book, error)
	Set(ctx context.Context, b *book.Book) error
	Delete(ctx context.Context, ids ...uint) error
}

// BookResponse 图书详情
type BookResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	GenreID     uint    `json:"genre_id"`
	Genre       string  `json:"genre"`
	Price       int64   `json:"price"` // 价格(分)
	PriceYuan   string  `json:"price_yuan"`
	ImageURL    string  `json:"image_url"`
	Rating      float64 `json:"rating"`
	Stock       int     `json:"stock"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// BookListItem 列表项,不含description
type BookListItem struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Genre     string  `json:"genre"`
	Price     int64   `json:"price"`
	PriceYuan string  `json:"price_yuan"`
	ImageURL  string  `json:"image_url"`
	Rating    float64 `json:"rating"`
	Stock     int     `json:"stock"`
}

// BookSection 首页按分类分组
type BookSection struct {
	Genre string         `json:"genre"`
	Books []BookListItem `json:"books"`
}

// GenreResponse 分类
type GenreResponse struct {
	ID  uint   `json:"id"`
	Tag string `json:"tag"`
}

// ListBooksRequest 列表查询参数
type ListBooksRequest struct {
	Page     int
	PageSize int
	Keyword  string // 匹配书名或作者
	GenreID  uint
	SortBy   string // newest | price_asc | price_desc | rating | title
}

// CatalogUseCase 图书目录查询(公开接口)
type CatalogUseCase struct {
	bookRepo  book.Repository
	genreRepo genre.Repository
	cache     Cache
	log       *zap.Logger
}

// NewCatalogUseCase 创建目录查询用例
func NewCatalogUseCase(bookRepo book.Repository, genreRepo genre.Repository, cache Cache, log *zap.Logger) *CatalogUseCase {
	return &CatalogUseCase{bookRepo: bookRepo, genreRepo: genreRepo, cache: cache, log: log}
}

// GetBook Cache-Aside: 先查缓存,未命中查库后回填;缓存故障时直接查库
func (uc *CatalogUseCase) GetBook(ctx context.Context, id uint) (*BookResponse, error) {
	cached, err := uc.cache.Get(ctx, id)
	if err != nil {
		uc.log.Warn("读取图书缓存失败", zap.Uint("book_id", id), zap.Error(err))
	}
	if cached != nil {
		return NewBookResponse(cached), nil
	}

	b, err := uc.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, b); err != nil {
		uc.log.Warn("写入图书缓存失败", zap.Uint("book_id", id), zap.Error(err))
	}
	return NewBookResponse(b), nil
}

// ListBooks 分页、搜索、排序
func (uc *CatalogUseCase) ListBooks(ctx context.Context, req ListBooksRequest) ([]BookListItem, int64, error) {
	books, total, err := uc.bookRepo.List(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		GenreID:  req.GenreID,
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, 0, err
	}
	return newBookListItems(books), total, nil
}

// ListByGenreTag 按分类名查询,分类名不区分大小写
func (uc *CatalogUseCase) ListByGenreTag(ctx context.Context, tag string, req ListBooksRequest) ([]BookListItem, int64, error) {
	g, err := uc.genreRepo.FindByTag(ctx, tag)
	if err != nil {
		return nil, 0, err
	}
	req.GenreID = g.ID
	return uc.ListBooks(ctx, req)
}

// Sections 每个分类取评分最高的若干本,空分类不返回
func (uc *CatalogUseCase) Sections(ctx context.Context, size int) ([]BookSection, error) {
	if size < 1 {
		size = defaultSectionSize
	}
	genres, err := uc.genreRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	sections := make([]BookSection, 0, len(genres))
	for _, g := range genres {
		books, _, err := uc.bookRepo.List(ctx, book.ListParams{
			Page:     1,
			PageSize: size,
			GenreID:  g.ID,
			SortBy:   book.SortRating,
		})
		if err != nil {
			return nil, err
		}
		if len(books) == 0 {
			continue
		}
		sections = append(sections, BookSection{Genre: g.Tag, Books: newBookListItems(books)})
	}
	return sections, nil
}

// ListGenres 按Tag排序
func (uc *CatalogUseCase) ListGenres(ctx context.Context) ([]GenreResponse, error) {
	genres, err := uc.genreRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]GenreResponse, len(genres))
	for i, g := range genres {
		list[i] = GenreResponse{ID: g.ID, Tag: g.Tag}
	}
	return list, nil
}

// NewBookResponse 实体 → 详情
func NewBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		GenreID:     b.GenreID,
		Genre:       b.Genre,
		Price:       b.Price,
		PriceYuan:   yuan(b.Price),
		ImageURL:    b.ImageURL,
		Rating:      b.Rating,
		Stock:       b.Stock,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func newBookListItems(books []*book.Book) []BookListItem {
	list := make([]BookListItem, len(books))
	for i, b := range books {
		list[i] = BookListItem{
			ID:        b.ID,
			Title:     b.Title,
			Author:    b.Author,
			Genre:     b.Genre,
			Price:     b.Price,
			PriceYuan: yuan(b.Price),
			ImageURL:  b.ImageURL,
			Rating:    b.Rating,
			Stock:     b.Stock,
		}
	}
	return list
}

func yuan(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
