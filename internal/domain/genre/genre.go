// Package genre 图书分类
package genre

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// Genre 分类,Tag全局唯一
type Genre struct {
	ID        uint
	Tag       string
	CreatedAt time.Time
}

var (
	ErrGenreNotFound  = apperrors.New(apperrors.ErrCodeGenreNotFound, "分类不存在")
	ErrGenreDuplicate = apperrors.New(apperrors.ErrCodeGenreDuplicate, "分类已存在")
	ErrGenreInUse     = apperrors.New(apperrors.ErrCodeGenreInUse, "分类下仍有图书,无法删除")
	ErrInvalidTag     = apperrors.New(apperrors.ErrCodeInvalidParams, "分类名长度应为1-50个字符")
)

// NewGenre 创建分类,Tag去掉首尾空格
func NewGenre(tag string) (*Genre, error) {
	tag = strings.TrimSpace(tag)
	if n := utf8.RuneCountInString(tag); n < 1 || n > 50 {
		return nil, ErrInvalidTag
	}
	return &Genre{Tag: tag, CreatedAt: time.Now()}, nil
}

// Repository 分类仓储
type Repository interface {
	// Create Tag重复返回ErrGenreDuplicate
	Create(ctx context.Context, g *Genre) error

	FindByID(ctx context.Context, id uint) (*Genre, error)

	// FindByTag 大小写不敏感
	FindByTag(ctx context.Context, tag string) (*Genre, error)

	// List 按Tag升序
	List(ctx context.Context) ([]*Genre, error)

	Delete(ctx context.Context, id uint) error
}
