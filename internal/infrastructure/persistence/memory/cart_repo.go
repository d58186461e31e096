package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
)

type cartRepository struct {
	store *Store
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(store *Store) cart.Repository {
	return &cartRepository{store: store}
}

func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]*cart.Item, error) {
	defer r.store.lock(ctx)()
	items := make([]*cart.Item, 0)
	for _, it := range r.store.t.cart {
		if it.UserID == userID {
			items = append(items, &it)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.Before(items[j].AddedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *cartRepository) find(userID, bookID uint) (cart.Item, bool) {
	for _, it := range r.store.t.cart {
		if it.UserID == userID && it.BookID == bookID {
			return it, true
		}
	}
	return cart.Item{}, false
}

func (r *cartRepository) Find(ctx context.Context, userID, bookID uint) (*cart.Item, error) {
	defer r.store.lock(ctx)()
	it, ok := r.find(userID, bookID)
	if !ok {
		return nil, cart.ErrCartItemNotFound
	}
	return &it, nil
}

// Save (user_id, book_id)已存在时只更新数量
func (r *cartRepository) Save(ctx context.Context, item *cart.Item) error {
	defer r.store.lock(ctx)()
	if existing, ok := r.find(item.UserID, item.BookID); ok {
		existing.Quantity = item.Quantity
		existing.UpdatedAt = item.UpdatedAt
		r.store.t.cart[existing.ID] = existing
		item.ID = existing.ID
		return nil
	}
	item.ID = r.store.t.nextID("cart_items")
	r.store.t.cart[item.ID] = *item
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, userID, bookID uint) error {
	defer r.store.lock(ctx)()
	it, ok := r.find(userID, bookID)
	if !ok {
		return cart.ErrCartItemNotFound
	}
	delete(r.store.t.cart, it.ID)
	return nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for id, it := range r.store.t.cart {
		if it.UserID == userID {
			delete(r.store.t.cart, id)
			n++
		}
	}
	return n, nil
}

func (r *cartRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for _, it := range r.store.t.cart {
		if it.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *cartRepository) DeleteByBook(ctx context.Context, bookID uint) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for id, it := range r.store.t.cart {
		if it.BookID == bookID {
			delete(r.store.t.cart, id)
			n++
		}
	}
	return n, nil
}

type wishlistRepository struct {
	store *Store
}

// NewWishlistRepository 创建心愿单仓储
func NewWishlistRepository(store *Store) wishlist.Repository {
	return &wishlistRepository{store: store}
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID uint) ([]*wishlist.Item, error) {
	defer r.store.lock(ctx)()
	items := make([]*wishlist.Item, 0)
	for _, it := range r.store.t.wishlist {
		if it.UserID == userID {
			items = append(items, &it)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.Before(items[j].AddedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *wishlistRepository) Add(ctx context.Context, item *wishlist.Item) (bool, error) {
	defer r.store.lock(ctx)()
	for _, it := range r.store.t.wishlist {
		if it.UserID == item.UserID && it.BookID == item.BookID {
			return false, nil
		}
	}
	item.ID = r.store.t.nextID("wishlist_items")
	r.store.t.wishlist[item.ID] = *item
	return true, nil
}

func (r *wishlistRepository) Delete(ctx context.Context, userID, bookID uint) error {
	defer r.store.lock(ctx)()
	for id, it := range r.store.t.wishlist {
		if it.UserID == userID && it.BookID == bookID {
			delete(r.store.t.wishlist, id)
			return nil
		}
	}
	return wishlist.ErrWishlistItemNotFound
}

func (r *wishlistRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for id, it := range r.store.t.wishlist {
		if it.UserID == userID {
			delete(r.store.t.wishlist, id)
			n++
		}
	}
	return n, nil
}

func (r *wishlistRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for _, it := range r.store.t.wishlist {
		if it.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *wishlistRepository) DeleteByBook(ctx context.Context, bookID uint) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for id, it := range r.store.t.wishlist {
		if it.BookID == bookID {
			delete(r.store.t.wishlist, id)
			n++
		}
	}
	return n, nil
}
