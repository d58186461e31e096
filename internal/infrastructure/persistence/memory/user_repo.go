package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/xiebiao/bookrec/internal/domain/address"
	"github.com/xiebiao/bookrec/internal/domain/user"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

type userRepository struct {
	store *Store
}

// NewUserRepository 创建用户仓储
func NewUserRepository(store *Store) user.Repository {
	return &userRepository{store: store}
}

func cloneUser(u user.User) *user.User {
	u.Roles = slices.Clone(u.Roles)
	return &u
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	defer r.store.lock(ctx)()
	t := r.store.t
	for _, existing := range t.users {
		if existing.Email == u.Email {
			return user.ErrEmailDuplicate
		}
	}
	now := time.Now()
	u.ID = t.nextID("users")
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	t.users[u.ID] = *cloneUser(*u)
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	defer r.store.lock(ctx)()
	u, ok := r.store.t.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	defer r.store.lock(ctx)()
	for _, u := range r.store.t.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	defer r.store.lock(ctx)()
	existing, ok := r.store.t.users[u.ID]
	if !ok {
		return nil
	}
	existing.FullName = u.FullName
	existing.Password = u.Password
	existing.Roles = slices.Clone(u.Roles)
	existing.UpdatedAt = u.UpdatedAt
	r.store.t.users[u.ID] = existing
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.t.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.store.t.users, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, page, pageSize int) ([]*user.User, int64, error) {
	defer r.store.lock(ctx)()
	all := make([]*user.User, 0, len(r.store.t.users))
	for _, u := range r.store.t.users {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start, end := paginate(len(all), page, pageSize)
	return all[start:end], int64(len(all)), nil
}

type addressRepository struct {
	store *Store
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(store *Store) address.Repository {
	return &addressRepository{store: store}
}

func (r *addressRepository) Create(ctx context.Context, a *address.Address) error {
	defer r.store.lock(ctx)()
	t := r.store.t
	for _, existing := range t.addresses {
		if existing.UserID == a.UserID {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "用户已有地址")
		}
	}
	a.ID = t.nextID("addresses")
	t.addresses[a.ID] = *a
	return nil
}

func (r *addressRepository) FindByUserID(ctx context.Context, userID uint) (*address.Address, error) {
	defer r.store.lock(ctx)()
	for _, a := range r.store.t.addresses {
		if a.UserID == userID {
			return &a, nil
		}
	}
	return nil, address.ErrAddressNotFound
}

func (r *addressRepository) Update(ctx context.Context, a *address.Address) error {
	defer r.store.lock(ctx)()
	for id, existing := range r.store.t.addresses {
		if existing.UserID == a.UserID {
			updated := *a
			updated.ID = id
			updated.CreatedAt = existing.CreatedAt
			r.store.t.addresses[id] = updated
			return nil
		}
	}
	return nil
}

func (r *addressRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	defer r.store.lock(ctx)()
	for id, a := range r.store.t.addresses {
		if a.UserID == userID {
			delete(r.store.t.addresses, id)
		}
	}
	return nil
}
