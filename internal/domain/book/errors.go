package book

import (
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// 图书领域错误
var (
	ErrBookNotFound      = apperrors.ErrBookNotFound
	ErrInsufficientStock = apperrors.ErrInsufficientStock

	ErrInvalidTitle    = apperrors.New(apperrors.ErrCodeInvalidParams, "书名长度应为1-255个字符")
	ErrInvalidAuthor   = apperrors.New(apperrors.ErrCodeInvalidParams, "作者长度应为1-255个字符")
	ErrInvalidGenre    = apperrors.New(apperrors.ErrCodeInvalidParams, "必须指定分类")
	ErrInvalidPrice    = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")
	ErrInvalidStock    = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")
	ErrInvalidRating   = apperrors.New(apperrors.ErrCodeInvalidParams, "评分应在0-5之间")
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
)
