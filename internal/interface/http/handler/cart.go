package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookrec/internal/application/cart"
	appwishlist "github.com/xiebiao/bookrec/internal/application/wishlist"
	"github.com/xiebiao/bookrec/internal/interface/http/dto"
	"github.com/xiebiao/bookrec/internal/interface/http/middleware"
	"github.com/xiebiao/bookrec/pkg/response"
)

// CartHandler 购物车
// 修改类接口统一返回最新的购物车
type CartHandler struct {
	cart *appcart.CartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(cart *appcart.CartUseCase) *CartHandler {
	return &CartHandler{cart: cart}
}

// List 查看购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.CartResponse}
// @Router       /cart [get]
func (h *CartHandler) List(c *gin.Context) {
	h.respond(c, middleware.MustGetUserID(c))
}

// Add 加入购物车,已有该书时累加数量
// @Summary      加入购物车
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "图书和数量"
// @Success      200 {object} response.Response{data=appcart.CartResponse}
// @Failure      400 {object} response.Response "库存不足"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /cart/items [post]
func (h *CartHandler) Add(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID := middleware.MustGetUserID(c)
	if _, err := h.cart.Add(c.Request.Context(), userID, req.BookID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, userID)
}

// Update 修改数量,0表示移除
// @Summary      修改购物车数量
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId  path int                       true "图书ID"
// @Param        request body dto.UpdateCartItemRequest true "数量"
// @Success      200 {object} response.Response{data=appcart.CartResponse}
// @Router       /cart/items/{bookId} [put]
func (h *CartHandler) Update(c *gin.Context) {
	bookID, ok := uintParam(c, "bookId")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID := middleware.MustGetUserID(c)
	if _, err := h.cart.Update(c.Request.Context(), userID, bookID, *req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, userID)
}

// Remove 移除一行
// @Summary      移出购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=appcart.CartResponse}
// @Failure      404 {object} response.Response "购物车中没有这本书"
// @Router       /cart/items/{bookId} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	bookID, ok := uintParam(c, "bookId")
	if !ok {
		return
	}
	userID := middleware.MustGetUserID(c)
	if err := h.cart.Remove(c.Request.Context(), userID, bookID); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, userID)
}

// Clear 清空购物车
// @Summary      清空购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.CartResponse}
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	if _, err := h.cart.Clear(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, userID)
}

func (h *CartHandler) respond(c *gin.Context, userID uint) {
	result, err := h.cart.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// WishlistHandler 心愿单
type WishlistHandler struct {
	wishlist *appwishlist.WishlistUseCase
}

// NewWishlistHandler 创建心愿单处理器
func NewWishlistHandler(wishlist *appwishlist.WishlistUseCase) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

// List 查看心愿单
// @Summary      查看心愿单
// @Tags         心愿单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appwishlist.WishlistItemResponse}
// @Router       /wishlist [get]
func (h *WishlistHandler) List(c *gin.Context) {
	h.respond(c, middleware.MustGetUserID(c))
}

// Add 加入心愿单,重复添加不报错
// @Summary      加入心愿单
// @Tags         心愿单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddWishlistItemRequest true "图书"
// @Success      200 {object} response.Response{data=[]appwishlist.WishlistItemResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /wishlist/items [post]
func (h *WishlistHandler) Add(c *gin.Context) {
	var req dto.AddWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID := middleware.MustGetUserID(c)
	if _, err := h.wishlist.Add(c.Request.Context(), userID, req.BookID); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, userID)
}

// Remove 移出心愿单
// @Summary      移出心愿单
// @Tags         心愿单
// @Produce      json
// @Security     BearerAuth
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=[]appwishlist.WishlistItemResponse}
// @Failure      404 {object} response.Response "心愿单中没有这本书"
// @Router       /wishlist/items/{bookId} [delete]
func (h *WishlistHandler) Remove(c *gin.Context) {
	bookID, ok := uintParam(c, "bookId")
	if !ok {
		return
	}
	userID := middleware.MustGetUserID(c)
	if err := h.wishlist.Remove(c.Request.Context(), userID, bookID); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, userID)
}

// Clear 清空心愿单
// @Summary      清空心愿单
// @Tags         心愿单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appwishlist.WishlistItemResponse}
// @Router       /wishlist [delete]
func (h *WishlistHandler) Clear(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	if _, err := h.wishlist.Clear(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, userID)
}

// MoveToCart 移入购物车
// @Summary      心愿单移入购物车
// @Tags         心愿单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId  path int                   true  "图书ID"
// @Param        request body dto.MoveToCartRequest false "数量,默认1"
// @Success      200 {object} response.Response{data=[]appwishlist.WishlistItemResponse}
// @Router       /wishlist/items/{bookId}/move-to-cart [post]
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	bookID, ok := uintParam(c, "bookId")
	if !ok {
		return
	}
	req := dto.MoveToCartRequest{Quantity: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
	}
	userID := middleware.MustGetUserID(c)
	if err := h.wishlist.MoveToCart(c.Request.Context(), userID, bookID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, userID)
}

func (h *WishlistHandler) respond(c *gin.Context, userID uint) {
	result, err := h.wishlist.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
