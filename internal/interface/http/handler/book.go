package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookrec/internal/application/book"
	"github.com/xiebiao/bookrec/internal/interface/http/dto"
	"github.com/xiebiao/bookrec/pkg/response"
)

// BookHandler 图书目录(公开)与目录维护(管理员)
type BookHandler struct {
	catalog *appbook.CatalogUseCase
	admin   *appbook.CatalogAdminUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(catalog *appbook.CatalogUseCase, admin *appbook.CatalogAdminUseCase) *BookHandler {
	return &BookHandler{catalog: catalog, admin: admin}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页,关键字匹配书名或作者(不区分大小写),可按分类过滤和排序
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        keyword   query string false "关键字"
// @Param        genre_id  query int    false "分类ID"
// @Param        sort_by   query string false "newest|price_asc|price_desc|rating|title"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appbook.BookListItem}}
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	req.Normalize()

	list, total, err := h.catalog.ListBooks(c.Request.Context(), listRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, list, total, req.Page, req.PageSize)
}

// ListByGenre 按分类名查询图书
// @Summary      分类下的图书
// @Tags         图书
// @Produce      json
// @Param        tag path string true "分类名"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appbook.BookListItem}}
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /genres/{tag}/books [get]
func (h *BookHandler) ListByGenre(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	req.Normalize()

	list, total, err := h.catalog.ListByGenreTag(c.Request.Context(), c.Param("tag"), listRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, list, total, req.Page, req.PageSize)
}

// Sections 首页按分类分组
// @Summary      首页分类分组
// @Description  每个分类取评分最高的若干本,空分类不返回
// @Tags         图书
// @Produce      json
// @Param        size query int false "每个分类的数量"
// @Success      200 {object} response.Response{data=[]appbook.BookSection}
// @Router       /books/sections [get]
func (h *BookHandler) Sections(c *gin.Context) {
	var req dto.SectionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.catalog.Sections(c.Request.Context(), req.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListGenres 分类列表
// @Summary      分类列表
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{data=[]appbook.GenreResponse}
// @Router       /genres [get]
func (h *BookHandler) ListGenres(c *gin.Context) {
	result, err := h.catalog.ListGenres(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateBook 上架图书
// @Summary      上架图书
// @Tags         管理-图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /admin/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.admin.CreateBook(c.Request.Context(), bookRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateBook 修改图书
// @Summary      修改图书
// @Description  请求中的stock被忽略,库存通过PATCH /admin/books/{id}/stock调整
// @Tags         管理-图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int             true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Router       /admin/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.admin.UpdateBook(c.Request.Context(), id, bookRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 下架图书
// @Summary      下架图书
// @Description  同时从所有购物车和心愿单中移除,历史订单不受影响
// @Tags         管理-图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /admin/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteBook(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// AdjustStock 调整库存
// @Summary      调整库存
// @Tags         管理-图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "图书ID"
// @Param        request body dto.AdjustStockRequest true "增量"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response "库存不足"
// @Router       /admin/books/{id}/stock [patch]
func (h *BookHandler) AdjustStock(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.admin.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateGenre 新建分类
// @Summary      新建分类
// @Tags         管理-图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.GenreRequest true "分类"
// @Success      201 {object} response.Response{data=appbook.GenreResponse}
// @Failure      400 {object} response.Response "分类已存在"
// @Router       /admin/genres [post]
func (h *BookHandler) CreateGenre(c *gin.Context) {
	var req dto.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.admin.CreateGenre(c.Request.Context(), req.Tag)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// DeleteGenre 删除分类
// @Summary      删除分类
// @Tags         管理-图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "分类下仍有图书"
// @Router       /admin/genres/{id} [delete]
func (h *BookHandler) DeleteGenre(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteGenre(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func listRequest(req dto.ListBooksRequest) appbook.ListBooksRequest {
	return appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		GenreID:  req.GenreID,
		SortBy:   req.SortBy,
	}
}

func bookRequest(req dto.BookRequest) appbook.BookRequest {
	return appbook.BookRequest{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		GenreID:     req.GenreID,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Rating:      req.Rating,
		Stock:       req.Stock,
	}
}
