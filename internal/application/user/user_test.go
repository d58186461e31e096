package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/application/event"
	apporder "github.com/xiebiao/bookrec/internal/application/order"
	"github.com/xiebiao/bookrec/internal/domain/address"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/genre"
	"github.com/xiebiao/bookrec/internal/domain/order"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
	"github.com/xiebiao/bookrec/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
	"github.com/xiebiao/bookrec/pkg/jwt"
)

// plainHasher 测试用哈希,前缀"hashed:"
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainHasher) Compare(hashed, plain string) error {
	if hashed != "hashed:"+plain {
		return user.ErrPasswordMismatch
	}
	return nil
}

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

type env struct {
	users     user.Repository
	addresses address.Repository
	books     book.Repository
	genres    genre.Repository
	carts     cart.Repository
	wishlists wishlist.Repository
	orders    order.Repository
	sessions  *memory.SessionStore
	tokens    *jwt.Manager
	pub       *recordingPublisher

	register *RegisterUseCase
	login    *LoginUseCase
	refresh  *RefreshTokenUseCase
	logout   *LogoutUseCase
	profile  *ProfileUseCase
	deleteUC *DeleteAccountUseCase
	admin    *AdminUserUseCase
	place    *apporder.PlaceOrderUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	log := zap.NewNop()
	e := &env{
		users:     memory.NewUserRepository(store),
		addresses: memory.NewAddressRepository(store),
		books:     memory.NewBookRepository(store),
		genres:    memory.NewGenreRepository(store),
		carts:     memory.NewCartRepository(store),
		wishlists: memory.NewWishlistRepository(store),
		orders:    memory.NewOrderRepository(store),
		sessions:  memory.NewSessionStore(),
		tokens:    jwt.NewManager("test-secret", time.Hour, 24*time.Hour),
		pub:       &recordingPublisher{},
	}
	cache := memory.NewBookCache(time.Minute)
	svc := user.NewService(e.users, plainHasher{})

	e.register = NewRegisterUseCase(tx, svc, e.users, e.addresses, e.pub, log)
	e.login = NewLoginUseCase(svc, e.tokens, e.sessions, memory.NewLoginLimiter(3, time.Minute), log)
	e.refresh = NewRefreshTokenUseCase(e.tokens, e.sessions)
	e.logout = NewLogoutUseCase(e.sessions, log)
	e.profile = NewProfileUseCase(tx, svc, e.users, e.addresses, e.carts, e.wishlists, e.sessions, e.tokens, log)

	deps := apporder.TransitionDeps{
		TxManager: tx, OrderRepo: e.orders, BookRepo: e.books, UserRepo: e.users,
		Cache: cache, Publisher: e.pub, Log: log,
	}
	e.deleteUC = NewDeleteAccountUseCase(tx, apporder.NewCancelAllOrdersUseCase(deps),
		e.users, e.addresses, e.carts, e.wishlists, e.sessions, e.tokens, log)
	e.admin = NewAdminUserUseCase(e.users, e.deleteUC)
	e.place = apporder.NewPlaceOrderUseCase(tx, e.users, e.carts, e.books, e.orders, cache, e.pub, log)
	return e
}

func (e *env) signup(t *testing.T, email string) *UserInfo {
	t.Helper()
	u, err := e.register.Execute(context.Background(), RegisterRequest{Email: email, Password: "secret123", FullName: "Alice"})
	require.NoError(t, err)
	return u
}

func (e *env) userCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := e.users.List(context.Background(), 1, 100)
	require.NoError(t, err)
	return total
}

func TestRegister_CreatesUserWithDefaultAddress(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	info := e.signup(t, "Alice@Example.com")
	assert.Equal(t, "alice@example.com", info.Email)
	assert.Equal(t, []string{user.RoleUser}, info.Roles)

	addr, err := e.addresses.FindByUserID(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, address.DefaultStreet, addr.Street)
	assert.Equal(t, address.DefaultZipCode, addr.ZipCode)
	assert.Equal(t, address.DefaultPhone, addr.Phone)

	require.Len(t, e.pub.events, 1)
	assert.Equal(t, event.RoutingUserRegistered, e.pub.events[0].RoutingKey())
}

func TestRegister_DuplicateEmailCreatesNoRow(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "alice@example.com")
	require.EqualValues(t, 1, e.userCount(t))

	_, err := e.register.Execute(context.Background(), RegisterRequest{
		Email: "ALICE@example.com", Password: "another123", FullName: "Other",
	})
	assert.ErrorIs(t, err, user.ErrEmailDuplicate)
	assert.EqualValues(t, 1, e.userCount(t))
	assert.Len(t, e.pub.events, 1)
}

func TestEnsureAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	req := RegisterRequest{Email: "admin@example.com", Password: "admin1234", FullName: "Admin"}

	changed, err := e.register.EnsureAdmin(ctx, req)
	require.NoError(t, err)
	assert.True(t, changed)
	u, err := e.users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.True(t, u.HasRole(user.RoleUser))

	changed, err = e.register.EnsureAdmin(ctx, req)
	require.NoError(t, err)
	assert.False(t, changed)

	// 已有普通账号时补上管理员角色
	e.signup(t, "bob@example.com")
	changed, err = e.register.EnsureAdmin(ctx, RegisterRequest{Email: "bob@example.com", Password: "whatever1"})
	require.NoError(t, err)
	assert.True(t, changed)
	u, _ = e.users.FindByEmail(ctx, "bob@example.com")
	assert.True(t, u.IsAdmin())
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	info := e.signup(t, "alice@example.com")

	resp, err := e.login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, info.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.EqualValues(t, 3600, resp.ExpiresIn)

	claims, err := e.tokens.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(jwt.RoleUser))

	session, err := e.sessions.GetSession(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", session["ip"])

	_, err = e.login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "wrong1234"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	_, err = e.login.Execute(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLogin_ThrottledAfterRepeatedFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t, "alice@example.com")

	for range 3 {
		_, err := e.login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "wrong1234"})
		require.ErrorIs(t, err, user.ErrInvalidCredentials)
	}
	// 冷却期内正确密码也会被拒绝
	_, err := e.login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrTooManyRequests)
}

// revokedSessions 把吊销时间固定在未来,避免与Token签发落在同一秒
type revokedSessions struct {
	*memory.SessionStore
	since time.Time
}

func (s revokedSessions) RevokedSince(context.Context, uint) (time.Time, error) {
	return s.since, nil
}

func TestRefreshToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t, "alice@example.com")
	resp, err := e.login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := e.refresh.Execute(ctx, resp.RefreshToken)
	require.NoError(t, err)
	_, err = e.tokens.ParseToken(refreshed.AccessToken)
	require.NoError(t, err)

	_, err = e.refresh.Execute(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	revoked := NewRefreshTokenUseCase(e.tokens, revokedSessions{e.sessions, time.Now().Add(time.Minute)})
	_, err = revoked.Execute(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestLogout_BlacklistsAccessToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	info := e.signup(t, "alice@example.com")
	resp, err := e.login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	claims, err := e.tokens.ParseToken(resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, e.logout.Execute(ctx, info.ID, resp.AccessToken, claims.ExpiresAt.Time))

	blocked, err := e.sessions.IsInBlacklist(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blocked)
	_, err = e.sessions.GetSession(ctx, info.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	info := e.signup(t, "alice@example.com")

	item, _ := cart.NewItem(info.ID, 1, 2)
	require.NoError(t, e.carts.Save(ctx, item))
	_, err := e.wishlists.Add(ctx, wishlist.NewItem(info.ID, 1))
	require.NoError(t, err)
	_, err = e.wishlists.Add(ctx, wishlist.NewItem(info.ID, 2))
	require.NoError(t, err)

	p, err := e.profile.Get(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", p.Username)
	assert.Equal(t, "Alice", p.FullName)
	assert.EqualValues(t, 1, p.CartCount)
	assert.EqualValues(t, 2, p.WishlistCount)

	updated, err := e.profile.UpdateFullName(ctx, info.ID, "  Alice Liddell ")
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName)
	assert.Equal(t, "alice@example.com", updated.Email)

	_, err = e.profile.UpdateFullName(ctx, info.ID, " ")
	assert.ErrorIs(t, err, user.ErrInvalidFullName)
}

func TestProfile_ChangePasswordRevokesTokens(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	info := e.signup(t, "alice@example.com")

	err := e.profile.ChangePassword(ctx, info.ID, "wrong1234", "newpass456")
	assert.ErrorIs(t, err, user.ErrIncorrectPassword)
	since, _ := e.sessions.RevokedSince(ctx, info.ID)
	assert.True(t, since.IsZero())

	require.NoError(t, e.profile.ChangePassword(ctx, info.ID, "secret123", "newpass456"))
	since, _ = e.sessions.RevokedSince(ctx, info.ID)
	assert.False(t, since.IsZero())

	_, err = e.login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	_, err = e.login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "newpass456"})
	assert.NoError(t, err)
}

func TestProfile_Address(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	info := e.signup(t, "alice@example.com")

	addr, err := e.profile.GetAddress(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, address.DefaultCity, addr.City)

	fields := address.Fields{Street: "1 Main St", City: "Springfield", State: "IL", Country: "US", ZipCode: "62701", Phone: "+1 555 0100"}
	saved, err := e.profile.SaveAddress(ctx, info.ID, fields)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", saved.City)

	fields.ZipCode = "!"
	_, err = e.profile.SaveAddress(ctx, info.ID, fields)
	assert.ErrorIs(t, err, address.ErrInvalidZipCode)

	// 地址被删后保存会重新创建
	require.NoError(t, e.addresses.DeleteByUserID(ctx, info.ID))
	fields.ZipCode = "62702"
	saved, err = e.profile.SaveAddress(ctx, info.ID, fields)
	require.NoError(t, err)
	assert.Equal(t, "62702", saved.ZipCode)
}

func TestDeleteAccount_CancelsOrdersAndClearsData(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	info := e.signup(t, "alice@example.com")

	g, _ := genre.NewGenre("Fiction")
	require.NoError(t, e.genres.Create(ctx, g))
	b, _ := book.NewBook(book.Fields{Title: "三体", Author: "刘慈欣", GenreID: g.ID, Price: 2300, Stock: 5})
	require.NoError(t, e.books.Create(ctx, b))

	item, _ := cart.NewItem(info.ID, b.ID, 3)
	require.NoError(t, e.carts.Save(ctx, item))
	placed, err := e.place.Execute(ctx, info.ID)
	require.NoError(t, err)

	item, _ = cart.NewItem(info.ID, b.ID, 1)
	require.NoError(t, e.carts.Save(ctx, item))
	_, err = e.wishlists.Add(ctx, wishlist.NewItem(info.ID, b.ID))
	require.NoError(t, err)

	require.NoError(t, e.deleteUC.Execute(ctx, info.ID))

	_, err = e.users.FindByID(ctx, info.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	_, err = e.addresses.FindByUserID(ctx, info.ID)
	assert.ErrorIs(t, err, address.ErrAddressNotFound)
	n, _ := e.carts.CountByUser(ctx, info.ID)
	assert.Zero(t, n)
	n, _ = e.wishlists.CountByUser(ctx, info.ID)
	assert.Zero(t, n)

	o, err := e.orders.FindByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, o.Status)
	restored, _ := e.books.FindByID(ctx, b.ID)
	assert.Equal(t, 5, restored.Stock)

	since, _ := e.sessions.RevokedSince(ctx, info.ID)
	assert.False(t, since.IsZero())

	// 邮箱可重新注册
	e.signup(t, "alice@example.com")

	assert.ErrorIs(t, e.deleteUC.Execute(ctx, info.ID), user.ErrUserNotFound)
}

func TestAdminUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice@example.com")
	bob := e.signup(t, "bob@example.com")

	list, total, err := e.admin.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, alice.ID, list[0].ID)

	assert.ErrorIs(t, e.admin.Delete(ctx, alice.ID, alice.ID), ErrDeleteSelf)
	require.NoError(t, e.admin.Delete(ctx, alice.ID, bob.ID))
	assert.EqualValues(t, 1, e.userCount(t))
}
