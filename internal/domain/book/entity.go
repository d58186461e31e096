package book

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Book 图书实体(聚合根)
// 价格以"分"为单位的int64保存;Genre是分类Tag的只读冗余,由仓储联表填充
type Book struct {
	ID          uint
	Title       string
	Author      string
	Description string
	GenreID     uint
	Genre       string
	Price       int64
	ImageURL    string
	Rating      float64
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fields 创建/修改图书的可写字段
type Fields struct {
	Title       string
	Author      string
	Description string
	GenreID     uint
	Price       int64
	ImageURL    string
	Rating      float64
	Stock       int
}

// Validate 标题作者非空,价格/库存非负,评分0-5
func (f Fields) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(f.Title)); n < 1 || n > 255 {
		return ErrInvalidTitle
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(f.Author)); n < 1 || n > 255 {
		return ErrInvalidAuthor
	}
	if f.GenreID == 0 {
		return ErrInvalidGenre
	}
	if f.Price < 0 {
		return ErrInvalidPrice
	}
	if f.Stock < 0 {
		return ErrInvalidStock
	}
	if f.Rating < 0 || f.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// NewBook 创建图书(工厂方法)
func NewBook(f Fields) (*Book, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	b := &Book{CreatedAt: now}
	b.apply(f, now)
	return b, nil
}

// Update 覆盖除库存外的可写字段,库存只能通过UpdateStock增减
func (b *Book) Update(f Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	stock := b.Stock
	b.apply(f, time.Now())
	b.Stock = stock
	return nil
}

func (b *Book) apply(f Fields, now time.Time) {
	b.Title = strings.TrimSpace(f.Title)
	b.Author = strings.TrimSpace(f.Author)
	b.Description = f.Description
	b.GenreID = f.GenreID
	b.Price = f.Price
	b.ImageURL = f.ImageURL
	b.Rating = f.Rating
	b.Stock = f.Stock
	b.UpdatedAt = now
}

// HasStock 库存是否满足数量
func (b *Book) HasStock(quantity int) bool {
	return quantity > 0 && b.Stock >= quantity
}

// InsufficientStock 带书名的库存不足错误
func (b *Book) InsufficientStock(requested int) error {
	return ErrInsufficientStock.WithMessage(
		fmt.Sprintf("《%s》库存不足,当前库存%d,需要%d", b.Title, b.Stock, requested))
}
