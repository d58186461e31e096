package order

import (
	"fmt"

	"github.com/xiebiao/bookrec/internal/domain/order"
)

const timeLayout = "2006-01-02 15:04:05"

// OrderItemResponse 订单明细
type OrderItemResponse struct {
	BookID    uint   `json:"book_id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	Price     int64  `json:"price"` // 下单时单价(分)
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
	PriceYuan string `json:"price_yuan"`
}

// OrderResponse 订单
type OrderResponse struct {
	ID        uint                `json:"id"`
	OrderNo   string              `json:"order_no"`
	UserID    uint                `json:"user_id"`
	Status    string              `json:"status"`
	Total     int64               `json:"total"`
	TotalYuan string              `json:"total_yuan"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
}

// NewOrderResponse 实体 → 响应
func NewOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			BookID:    it.BookID,
			Title:     it.Title,
			ImageURL:  it.ImageURL,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
			PriceYuan: yuan(it.Price),
		}
	}
	return &OrderResponse{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		UserID:    o.UserID,
		Status:    o.Status.String(),
		Total:     o.Total,
		TotalYuan: yuan(o.Total),
		Items:     items,
		CreatedAt: o.CreatedAt.Format(timeLayout),
		UpdatedAt: o.UpdatedAt.Format(timeLayout),
	}
}

func newOrderResponses(orders []*order.Order) []*OrderResponse {
	list := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		list[i] = NewOrderResponse(o)
	}
	return list
}

func yuan(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
