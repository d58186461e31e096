package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/genre"
	"github.com/xiebiao/bookrec/internal/infrastructure/persistence/memory"
)

func setup(t *testing.T) (*CartUseCase, cart.Repository, func(title string, price int64, stock int) uint) {
	t.Helper()
	store := memory.NewStore()
	books := memory.NewBookRepository(store)
	carts := memory.NewCartRepository(store)
	uc := NewCartUseCase(memory.NewTxManager(store), carts, books, zap.NewNop())

	g, _ := genre.NewGenre("Fiction")
	require.NoError(t, memory.NewGenreRepository(store).Create(context.Background(), g))

	newBook := func(title string, price int64, stock int) uint {
		b, err := book.NewBook(book.Fields{Title: title, Author: "作者", GenreID: g.ID, Price: price, Stock: stock})
		require.NoError(t, err)
		require.NoError(t, books.Create(context.Background(), b))
		return b.ID
	}
	return uc, carts, newBook
}

func TestCart_AddIncrementsUpToStock(t *testing.T) {
	uc, _, newBook := setup(t)
	ctx := context.Background()
	bookID := newBook("三体", 2300, 5)

	item, err := uc.Add(ctx, 1, bookID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	item, err = uc.Add(ctx, 1, bookID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	_, err = uc.Add(ctx, 1, bookID, 1)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)

	resp, err := uc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)
	assert.Equal(t, int64(11500), resp.Total)
	assert.Equal(t, "115.00", resp.TotalYuan)
}

func TestCart_AddValidation(t *testing.T) {
	uc, _, newBook := setup(t)
	ctx := context.Background()
	bookID := newBook("三体", 2300, 5)

	_, err := uc.Add(ctx, 1, bookID, 0)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	_, err = uc.Add(ctx, 1, 999, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	_, err = uc.Add(ctx, 1, bookID, 6)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)
}

func TestCart_UpdateZeroRemovesLine(t *testing.T) {
	uc, carts, newBook := setup(t)
	ctx := context.Background()
	bookID := newBook("三体", 2300, 5)
	_, err := uc.Add(ctx, 1, bookID, 2)
	require.NoError(t, err)

	item, err := uc.Update(ctx, 1, bookID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)

	item, err = uc.Update(ctx, 1, bookID, 0)
	require.NoError(t, err)
	assert.Nil(t, item)
	_, err = carts.Find(ctx, 1, bookID)
	assert.ErrorIs(t, err, cart.ErrCartItemNotFound)
}

func TestCart_UpdateRejects(t *testing.T) {
	uc, _, newBook := setup(t)
	ctx := context.Background()
	bookID := newBook("三体", 2300, 5)

	_, err := uc.Update(ctx, 1, bookID, 2)
	assert.ErrorIs(t, err, cart.ErrCartItemNotFound)

	_, err = uc.Add(ctx, 1, bookID, 1)
	require.NoError(t, err)
	_, err = uc.Update(ctx, 1, bookID, -1)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	_, err = uc.Update(ctx, 1, bookID, 9)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)
}

func TestCart_RemoveAndClear(t *testing.T) {
	uc, _, newBook := setup(t)
	ctx := context.Background()
	a := newBook("活着", 1800, 5)
	b := newBook("围城", 2000, 5)
	_, err := uc.Add(ctx, 1, a, 1)
	require.NoError(t, err)
	_, err = uc.Add(ctx, 1, b, 1)
	require.NoError(t, err)

	require.NoError(t, uc.Remove(ctx, 1, a))
	assert.ErrorIs(t, uc.Remove(ctx, 1, a), cart.ErrCartItemNotFound)

	n, err := uc.Clear(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	resp, err := uc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

// lockRecorder 记录图书行锁的调用,确认写操作先锁再读
type lockRecorder struct {
	book.Repository
	mu     sync.Mutex
	locked []uint
	reads  int
}

func (r *lockRecorder) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	r.locked = append(r.locked, id)
	r.mu.Unlock()
	return r.Repository.LockByID(ctx, id)
}

func (r *lockRecorder) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return r.Repository.FindByID(ctx, id)
}

func TestCart_MutationsLockBookRow(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	g, _ := genre.NewGenre("Fiction")
	require.NoError(t, memory.NewGenreRepository(store).Create(ctx, g))
	b, err := book.NewBook(book.Fields{Title: "三体", Author: "刘慈欣", GenreID: g.ID, Price: 2300, Stock: 10})
	require.NoError(t, err)
	require.NoError(t, memory.NewBookRepository(store).Create(ctx, b))

	rec := &lockRecorder{Repository: memory.NewBookRepository(store)}
	uc := NewCartUseCase(memory.NewTxManager(store), memory.NewCartRepository(store), rec, zap.NewNop())

	_, err = uc.Add(ctx, 1, b.ID, 1)
	require.NoError(t, err)
	_, err = uc.Update(ctx, 1, b.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, []uint{b.ID, b.ID}, rec.locked)
	assert.Zero(t, rec.reads, "库存校验必须读加锁后的图书行")
}

func TestCart_ConcurrentAddsAccumulate(t *testing.T) {
	uc, carts, newBook := setup(t)
	ctx := context.Background()
	bookID := newBook("三体", 2300, 100)
	_, err := uc.Add(ctx, 1, bookID, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Add(ctx, 1, bookID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	item, err := carts.Find(ctx, 1, bookID)
	require.NoError(t, err)
	assert.Equal(t, 22, item.Quantity)
}
