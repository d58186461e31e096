package order

import (
	"strings"
)

// Status 订单状态,以字符串落库便于直接阅读
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusConfirmed       Status = "CONFIRMED"
	StatusProcessing      Status = "PROCESSING"
	StatusShipped         Status = "SHIPPED"
	StatusOutForDelivery  Status = "OUT_FOR_DELIVERY"
	StatusDelivered       Status = "DELIVERED"
	StatusReturnRequested Status = "RETURN_REQUESTED"
	StatusReturned        Status = "RETURNED"
	StatusCancelled       Status = "CANCELLED"
	StatusFailed          Status = "FAILED"
	StatusRefunded        Status = "REFUNDED"
)

// AllStatuses 全部状态,按业务流程顺序
var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
	StatusReturnRequested,
	StatusReturned,
	StatusCancelled,
	StatusFailed,
	StatusRefunded,
}

// ParseStatus 解析状态文本
// 不区分大小写,空格和短横线视为下划线,如 "out for delivery" / "Out-For-Delivery"
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	st := Status(normalized)
	if !st.Valid() {
		return "", ErrInvalidOrderStatus.WithMessage("无效的订单状态: " + s)
	}
	return st, nil
}

// Valid 是否为已定义的状态
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal CANCELLED之后不允许任何流转
func (s Status) IsTerminal() bool {
	return s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}
