package dto

// AddCartItemRequest 加入购物车
type AddCartItemRequest struct {
	BookID   uint `json:"book_id" binding:"required" example:"1"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999" example:"2"`
}

// UpdateCartItemRequest 修改数量,0表示删除该行
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=999" example:"3"`
}

// AddWishlistItemRequest 加入心愿单
type AddWishlistItemRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
}

// MoveToCartRequest 心愿单移入购物车,数量默认1
type MoveToCartRequest struct {
	Quantity int `json:"quantity" binding:"omitempty,min=1,max=999" example:"1"`
}

// UpdateOrderStatusRequest 管理员修改订单状态
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"SHIPPED"`
}

// ListOrdersRequest 管理员订单列表
type ListOrdersRequest struct {
	PageRequest
	Status string `form:"status" example:"CONFIRMED"`
}
