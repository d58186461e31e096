package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/genre"
	"github.com/xiebiao/bookrec/internal/domain/order"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/internal/infrastructure/persistence/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type fixture struct {
	books  book.Repository
	carts  cart.Repository
	orders order.Repository
	users  user.Repository
	cache  *memory.BookCache
	pub    *recordingPublisher

	place     *PlaceOrderUseCase
	cancel    *CancelOrderUseCase
	update    *UpdateOrderStatusUseCase
	cancelAll *CancelAllOrdersUseCase
	query     *OrderQueryUseCase

	genreID uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		books:  memory.NewBookRepository(store),
		carts:  memory.NewCartRepository(store),
		orders: memory.NewOrderRepository(store),
		users:  memory.NewUserRepository(store),
		cache:  memory.NewBookCache(time.Minute),
		pub:    &recordingPublisher{},
	}
	tx := memory.NewTxManager(store)
	log := zap.NewNop()

	f.place = NewPlaceOrderUseCase(tx, f.users, f.carts, f.books, f.orders, f.cache, f.pub, log)
	deps := TransitionDeps{
		TxManager: tx,
		OrderRepo: f.orders,
		BookRepo:  f.books,
		UserRepo:  f.users,
		Cache:     f.cache,
		Publisher: f.pub,
		Log:       log,
	}
	f.cancel = NewCancelOrderUseCase(deps)
	f.update = NewUpdateOrderStatusUseCase(deps)
	f.cancelAll = NewCancelAllOrdersUseCase(deps)
	f.query = NewOrderQueryUseCase(f.orders)

	g, _ := genre.NewGenre("Fiction")
	require.NoError(t, memory.NewGenreRepository(store).Create(context.Background(), g))
	f.genreID = g.ID
	return f
}

func (f *fixture) user(t *testing.T, email string) uint {
	t.Helper()
	u := user.NewUser(email, "hash", "读者")
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func (f *fixture) book(t *testing.T, title string, price int64, stock int) uint {
	t.Helper()
	b, err := book.NewBook(book.Fields{Title: title, Author: "作者", GenreID: f.genreID, Price: price, Stock: stock})
	require.NoError(t, err)
	require.NoError(t, f.books.Create(context.Background(), b))
	return b.ID
}

func (f *fixture) addToCart(t *testing.T, userID, bookID uint, qty int) {
	t.Helper()
	item, err := cart.NewItem(userID, bookID, qty)
	require.NoError(t, err)
	require.NoError(t, f.carts.Save(context.Background(), item))
}

func (f *fixture) stock(t *testing.T, bookID uint) int {
	t.Helper()
	b, err := f.books.FindByID(context.Background(), bookID)
	require.NoError(t, err)
	return b.Stock
}

func TestPlaceOrder_DecrementsStockAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	bookID := f.book(t, "三体", 2300, 5)
	f.addToCart(t, uid, bookID, 3)

	resp, err := f.place.Execute(ctx, uid)
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, string(order.StatusConfirmed), resp.Status)
	assert.Equal(t, int64(6900), resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "三体", resp.Items[0].Title)
	assert.Equal(t, 2, f.stock(t, bookID))

	n, _ := f.carts.CountByUser(ctx, uid)
	assert.Zero(t, n)

	require.Len(t, f.pub.events, 1)
	placed := f.pub.events[0].(event.OrderPlaced)
	assert.Equal(t, "reader@example.com", placed.Email)
	assert.Equal(t, resp.OrderNo, placed.OrderNo)
}

func TestPlaceOrder_InsufficientStockChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	bookID := f.book(t, "三体", 2300, 2)
	f.addToCart(t, uid, bookID, 3)

	_, err := f.place.Execute(ctx, uid)
	require.ErrorIs(t, err, book.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "三体")

	assert.Equal(t, 2, f.stock(t, bookID))
	n, _ := f.carts.CountByUser(ctx, uid)
	assert.EqualValues(t, 1, n)
	_, total, _ := f.orders.ListByUserID(ctx, uid, 1, 10)
	assert.Zero(t, total)
	assert.Empty(t, f.pub.events)
}

func TestPlaceOrder_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	enough := f.book(t, "活着", 1800, 10)
	short := f.book(t, "围城", 2000, 1)
	f.addToCart(t, uid, enough, 4)
	f.addToCart(t, uid, short, 2)

	_, err := f.place.Execute(ctx, uid)
	require.ErrorIs(t, err, book.ErrInsufficientStock)

	assert.Equal(t, 10, f.stock(t, enough))
	assert.Equal(t, 1, f.stock(t, short))
	n, _ := f.carts.CountByUser(ctx, uid)
	assert.EqualValues(t, 2, n)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)
	uid := f.user(t, "reader@example.com")

	_, err := f.place.Execute(context.Background(), uid)
	assert.ErrorIs(t, err, cart.ErrCartEmpty)
}

func TestPlaceOrder_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.place.Execute(context.Background(), 404)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestPlaceOrder_InvalidatesBookCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	bookID := f.book(t, "三体", 2300, 5)
	require.NoError(t, f.cache.Set(ctx, &book.Book{ID: bookID, Stock: 5}))
	f.addToCart(t, uid, bookID, 1)

	_, err := f.place.Execute(ctx, uid)
	require.NoError(t, err)

	cached, _ := f.cache.Get(ctx, bookID)
	assert.Nil(t, cached)
}

func TestCancelOrder_RestoresStockOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	bookID := f.book(t, "三体", 2300, 5)
	f.addToCart(t, uid, bookID, 3)
	placed, err := f.place.Execute(ctx, uid)
	require.NoError(t, err)

	cancelled, err := f.cancel.Execute(ctx, uid, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusCancelled), cancelled.Status)
	assert.Equal(t, 5, f.stock(t, bookID))

	_, err = f.cancel.Execute(ctx, uid, placed.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotCancellable)
	assert.Equal(t, 5, f.stock(t, bookID))

	last := f.pub.events[len(f.pub.events)-1]
	assert.Equal(t, event.RoutingOrderCancelled, last.RoutingKey())
}

func TestCancelOrder_OtherUsersOrderIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	other := f.user(t, "other@example.com")
	bookID := f.book(t, "三体", 2300, 5)
	f.addToCart(t, owner, bookID, 1)
	placed, err := f.place.Execute(ctx, owner)
	require.NoError(t, err)

	_, err = f.cancel.Execute(ctx, other, placed.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.Equal(t, 4, f.stock(t, bookID))

	_, err = f.query.GetMine(ctx, other, placed.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestCancelOrder_SkipsDeletedBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	kept := f.book(t, "活着", 1800, 5)
	gone := f.book(t, "围城", 2000, 5)
	f.addToCart(t, uid, kept, 2)
	f.addToCart(t, uid, gone, 1)
	placed, err := f.place.Execute(ctx, uid)
	require.NoError(t, err)
	require.NoError(t, f.books.Delete(ctx, gone))

	_, err = f.cancel.Execute(ctx, uid, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, f.stock(t, kept))
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	bookID := f.book(t, "三体", 2300, 5)
	f.addToCart(t, uid, bookID, 1)
	placed, err := f.place.Execute(ctx, uid)
	require.NoError(t, err)

	_, err = f.update.Execute(ctx, placed.ID, "no such status")
	assert.ErrorIs(t, err, order.ErrInvalidOrderStatus)

	_, err = f.update.Execute(ctx, placed.ID, "confirmed")
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	shipped, err := f.update.Execute(ctx, placed.ID, "Out for delivery")
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusOutForDelivery), shipped.Status)

	// 发货后不能取消,也不归还库存
	_, err = f.update.Execute(ctx, placed.ID, "cancelled")
	assert.ErrorIs(t, err, order.ErrOrderNotCancellable)
	assert.Equal(t, 4, f.stock(t, bookID))

	last := f.pub.events[len(f.pub.events)-1].(event.OrderStatusChanged)
	assert.Equal(t, "CONFIRMED", last.From)
	assert.Equal(t, "OUT_FOR_DELIVERY", last.To)
}

func TestUpdateOrderStatus_CancelledIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	bookID := f.book(t, "三体", 2300, 5)
	f.addToCart(t, uid, bookID, 2)
	placed, err := f.place.Execute(ctx, uid)
	require.NoError(t, err)

	_, err = f.update.Execute(ctx, placed.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, 5, f.stock(t, bookID))

	_, err = f.update.Execute(ctx, placed.ID, "CONFIRMED")
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	assert.Equal(t, 5, f.stock(t, bookID))
}

func TestCancelAllOrders_SkipsNonConfirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	bookID := f.book(t, "三体", 2300, 10)

	var ids []uint
	for i := 0; i < 3; i++ {
		f.addToCart(t, uid, bookID, 2)
		placed, err := f.place.Execute(ctx, uid)
		require.NoError(t, err)
		ids = append(ids, placed.ID)
	}
	_, err := f.update.Execute(ctx, ids[0], "SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, 4, f.stock(t, bookID))

	result, err := f.cancelAll.Execute(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Cancelled())
	assert.Equal(t, 8, f.stock(t, bookID))

	before := len(f.pub.events)
	result.Finalize(ctx)
	assert.Len(t, f.pub.events, before+2)

	shipped, err := f.query.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", shipped.Status)
}

func TestOrderQuery_ListAllWithStatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.user(t, "reader@example.com")
	bookID := f.book(t, "三体", 2300, 10)
	for i := 0; i < 2; i++ {
		f.addToCart(t, uid, bookID, 1)
		_, err := f.place.Execute(ctx, uid)
		require.NoError(t, err)
	}

	mine, total, err := f.query.ListMine(ctx, uid, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, mine, 2)

	_, err = f.cancel.Execute(ctx, uid, mine[0].ID)
	require.NoError(t, err)

	list, total, err := f.query.ListAll(ctx, 1, 10, "cancelled")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, mine[0].ID, list[0].ID)

	_, _, err = f.query.ListAll(ctx, 1, 10, "lost")
	assert.ErrorIs(t, err, order.ErrInvalidOrderStatus)
}

func TestPlaceOrder_ConcurrentBuyersNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.book(t, "三体", 2300, 5)

	buyers := make([]uint, 8)
	for i := range buyers {
		buyers[i] = f.user(t, "buyer"+string(rune('a'+i))+"@example.com")
		f.addToCart(t, buyers[i], bookID, 1)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for _, uid := range buyers {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			if _, err := f.place.Execute(ctx, uid); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(uid)
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, f.stock(t, bookID))
}
