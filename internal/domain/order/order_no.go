package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// GenerateOrderNo 生成订单号
// 格式: BR + yyyyMMddHHmmss + 6位随机数,如 BR20251016093000123456
// 唯一性最终由order_no唯一索引保证
func GenerateOrderNo() string {
	return fmt.Sprintf("BR%s%06d", time.Now().Format("20060102150405"), rand.IntN(1000000))
}
