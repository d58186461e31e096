package dto

// BookRequest 管理员创建/修改图书
// 价格单位为分
type BookRequest struct {
	Title       string  `json:"title" binding:"required,max=255" example:"三体"`
	Author      string  `json:"author" binding:"required,max=255" example:"刘慈欣"`
	Description string  `json:"description" binding:"max=5000"`
	GenreID     uint    `json:"genre_id" binding:"required" example:"1"`
	Price       int64   `json:"price" binding:"min=0,max=99999999" example:"2350"`
	ImageURL    string  `json:"image_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	Rating      float64 `json:"rating" binding:"min=0,max=5" example:"4.5"`
	Stock       int     `json:"stock" binding:"min=0" example:"100"` // 仅创建时生效
}

// AdjustStockRequest 库存增减,结果不能为负
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required" example:"-3"`
}

// GenreRequest 创建分类
type GenreRequest struct {
	Tag string `json:"tag" binding:"required,max=50" example:"Fiction"`
}

// ListBooksRequest 图书列表查询
type ListBooksRequest struct {
	PageRequest
	Keyword string `form:"keyword" binding:"omitempty,max=100" example:"三体"`
	GenreID uint   `form:"genre_id" example:"1"`
	SortBy  string `form:"sort_by" binding:"omitempty,oneof=newest price_asc price_desc rating title" example:"newest"`
}

// SectionsRequest 首页分类分组
type SectionsRequest struct {
	Size int `form:"size" binding:"omitempty,min=1,max=50" example:"8"`
}
