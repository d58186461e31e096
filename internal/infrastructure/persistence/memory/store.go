// Package memory 内存版存储
//
// 实现全部领域仓储和事务管理器,用于单元测试和 database.driver=memory 的演示模式。
// 事务之间由一把互斥锁串行化,回滚靠事务开始时的数据快照。
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/xiebiao/bookrec/internal/domain/address"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/genre"
	"github.com/xiebiao/bookrec/internal/domain/order"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
)

// Store 所有表的容器
type Store struct {
	mu sync.Mutex
	t  *tables
}

// NewStore 创建空存储
func NewStore() *Store {
	return &Store{t: newTables()}
}

type tables struct {
	seq map[string]uint

	users     map[uint]user.User
	addresses map[uint]address.Address
	genres    map[uint]genre.Genre
	books     map[uint]book.Book
	cart      map[uint]cart.Item
	wishlist  map[uint]wishlist.Item
	orders    map[uint]order.Order
}

func newTables() *tables {
	return &tables{
		seq:       make(map[string]uint),
		users:     make(map[uint]user.User),
		addresses: make(map[uint]address.Address),
		genres:    make(map[uint]genre.Genre),
		books:     make(map[uint]book.Book),
		cart:      make(map[uint]cart.Item),
		wishlist:  make(map[uint]wishlist.Item),
		orders:    make(map[uint]order.Order),
	}
}

// nextID 自增主键,回滚后不复用(与MySQL一致)
func (t *tables) nextID(table string) uint {
	t.seq[table]++
	return t.seq[table]
}

// clone 深拷贝,作为事务快照
func (t *tables) clone() *tables {
	c := &tables{
		seq:       make(map[string]uint, len(t.seq)),
		users:     make(map[uint]user.User, len(t.users)),
		addresses: make(map[uint]address.Address, len(t.addresses)),
		genres:    make(map[uint]genre.Genre, len(t.genres)),
		books:     make(map[uint]book.Book, len(t.books)),
		cart:      make(map[uint]cart.Item, len(t.cart)),
		wishlist:  make(map[uint]wishlist.Item, len(t.wishlist)),
		orders:    make(map[uint]order.Order, len(t.orders)),
	}
	for k, v := range t.seq {
		c.seq[k] = v
	}
	for k, v := range t.users {
		v.Roles = slices.Clone(v.Roles)
		c.users[k] = v
	}
	for k, v := range t.addresses {
		c.addresses[k] = v
	}
	for k, v := range t.genres {
		c.genres[k] = v
	}
	for k, v := range t.books {
		c.books[k] = v
	}
	for k, v := range t.cart {
		c.cart[k] = v
	}
	for k, v := range t.wishlist {
		c.wishlist[k] = v
	}
	for k, v := range t.orders {
		v.Items = slices.Clone(v.Items)
		c.orders[k] = v
	}
	return c
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// lock 事务内已持有锁,直接返回
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// TxManager 内存事务管理器,实现txn.Manager
type TxManager struct {
	store *Store
}

// NewTxManager 创建事务管理器
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Transaction 整个事务期间持有存储锁;fn返回error或panic时恢复快照
// 嵌套调用复用外层事务
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	defer func() {
		if r := recover(); r != nil {
			s.t = snapshot
			panic(r)
		}
		if err != nil {
			// 自增序列不回滚
			seq := s.t.seq
			s.t = snapshot
			s.t.seq = seq
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// paginate 返回[start, end)区间,page从1开始
func paginate(total, page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
