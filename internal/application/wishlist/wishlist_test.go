package wishlist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcart "github.com/xiebiao/bookrec/internal/application/cart"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/genre"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
	"github.com/xiebiao/bookrec/internal/infrastructure/persistence/memory"
)

// flakyWishlist Delete总是失败,用来触发补偿
type flakyWishlist struct {
	wishlist.Repository
}

func (flakyWishlist) Delete(context.Context, uint, uint) error {
	return errors.New("wishlist store unavailable")
}

type env struct {
	uc        *WishlistUseCase
	carts     cart.Repository
	wishlists wishlist.Repository
	bookID    uint
}

func newEnv(t *testing.T, wrap func(wishlist.Repository) wishlist.Repository) *env {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	books := memory.NewBookRepository(store)
	carts := memory.NewCartRepository(store)
	var wl wishlist.Repository = memory.NewWishlistRepository(store)
	if wrap != nil {
		wl = wrap(wl)
	}

	g, _ := genre.NewGenre("Fiction")
	require.NoError(t, memory.NewGenreRepository(store).Create(context.Background(), g))
	b, err := book.NewBook(book.Fields{Title: "三体", Author: "刘慈欣", GenreID: g.ID, Price: 2300, Stock: 5})
	require.NoError(t, err)
	require.NoError(t, books.Create(context.Background(), b))

	cartUC := appcart.NewCartUseCase(tx, carts, books, zap.NewNop())
	return &env{
		uc:        NewWishlistUseCase(tx, wl, carts, books, cartUC, zap.NewNop()),
		carts:     carts,
		wishlists: wl,
		bookID:    b.ID,
	}
}

func TestWishlist_AddIsIdempotent(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	added, err := e.uc.Add(ctx, 1, e.bookID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = e.uc.Add(ctx, 1, e.bookID)
	require.NoError(t, err)
	assert.False(t, added)

	list, err := e.uc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "三体", list[0].Title)
	assert.True(t, list[0].InStock)

	_, err = e.uc.Add(ctx, 1, 999)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestWishlist_RemoveAndClear(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	_, err := e.uc.Add(ctx, 1, e.bookID)
	require.NoError(t, err)

	require.NoError(t, e.uc.Remove(ctx, 1, e.bookID))
	assert.ErrorIs(t, e.uc.Remove(ctx, 1, e.bookID), wishlist.ErrWishlistItemNotFound)

	_, err = e.uc.Add(ctx, 1, e.bookID)
	require.NoError(t, err)
	n, err := e.uc.Clear(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestWishlist_MoveToCart(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	_, err := e.uc.Add(ctx, 1, e.bookID)
	require.NoError(t, err)

	require.NoError(t, e.uc.MoveToCart(ctx, 1, e.bookID, 2))

	item, err := e.carts.Find(ctx, 1, e.bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	n, _ := e.wishlists.CountByUser(ctx, 1)
	assert.Zero(t, n)
}

func TestWishlist_MoveToCart_NotInWishlist(t *testing.T) {
	e := newEnv(t, nil)
	err := e.uc.MoveToCart(context.Background(), 1, e.bookID, 1)
	assert.ErrorIs(t, err, wishlist.ErrWishlistItemNotFound)
}

func TestWishlist_MoveToCart_InsufficientStockKeepsWishlist(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	_, err := e.uc.Add(ctx, 1, e.bookID)
	require.NoError(t, err)

	err = e.uc.MoveToCart(ctx, 1, e.bookID, 6)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)

	n, _ := e.wishlists.CountByUser(ctx, 1)
	assert.EqualValues(t, 1, n)
	_, err = e.carts.Find(ctx, 1, e.bookID)
	assert.ErrorIs(t, err, cart.ErrCartItemNotFound)
}

func TestWishlist_MoveToCart_CompensatesCart(t *testing.T) {
	e := newEnv(t, func(r wishlist.Repository) wishlist.Repository { return flakyWishlist{r} })
	ctx := context.Background()
	_, err := e.uc.Add(ctx, 1, e.bookID)
	require.NoError(t, err)

	// 购物车里原本有1本,补偿后应恢复为1本
	existing, _ := cart.NewItem(1, e.bookID, 1)
	require.NoError(t, e.carts.Save(ctx, existing))

	err = e.uc.MoveToCart(ctx, 1, e.bookID, 2)
	require.Error(t, err)

	item, err := e.carts.Find(ctx, 1, e.bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	n, _ := e.wishlists.CountByUser(ctx, 1)
	assert.EqualValues(t, 1, n)
}

func TestWishlist_MoveToCart_CompensationRemovesNewLine(t *testing.T) {
	e := newEnv(t, func(r wishlist.Repository) wishlist.Repository { return flakyWishlist{r} })
	ctx := context.Background()
	_, err := e.uc.Add(ctx, 1, e.bookID)
	require.NoError(t, err)

	require.Error(t, e.uc.MoveToCart(ctx, 1, e.bookID, 2))
	_, err = e.carts.Find(ctx, 1, e.bookID)
	assert.ErrorIs(t, err, cart.ErrCartItemNotFound)
}
