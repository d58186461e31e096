// Package txn 事务抽象
//
// 事务通过context在仓储之间传递:Transaction内fn收到的ctx携带事务,
// 仓储实现从ctx中取出事务句柄。fn返回错误即回滚,嵌套调用复用外层事务。
package txn

import "context"

// Manager 事务管理器
type Manager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
