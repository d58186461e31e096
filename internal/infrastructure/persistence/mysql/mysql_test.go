package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appcart "github.com/xiebiao/bookrec/internal/application/cart"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/order"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
)

// newMockDB GORM跑在sqlmock上,按顺序校验发出的SQL
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqlDB.Close()
	})
	return db, mock
}

func bookRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "author", "genre_id", "price", "stock"})
}

func TestBookRepository_UpdateStock(t *testing.T) {
	ctx := context.Background()
	const conditional = "UPDATE `books` SET `stock`=stock \\+ \\?.*WHERE id = \\? AND stock \\+ \\? >= 0"

	t.Run("条件更新成功", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(conditional).
			WithArgs(-2, sqlmock.AnyArg(), 1, -2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewBookRepository(db).UpdateStock(ctx, 1, -2))
	})

	t.Run("库存不足时不更新", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(conditional).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT \\* FROM `books` WHERE `books`.`id` = \\?").
			WillReturnRows(bookRows().AddRow(1, "三体", "刘慈欣", 1, 2300, 2))

		err := NewBookRepository(db).UpdateStock(ctx, 1, -3)
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
	})

	t.Run("图书不存在", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(conditional).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT \\* FROM `books` WHERE `books`.`id` = \\?").
			WillReturnRows(bookRows())

		err := NewBookRepository(db).UpdateStock(ctx, 9, -1)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestBookRepository_LockByID(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `books` WHERE `books`.`id` = \\?.*FOR UPDATE").
		WillReturnRows(bookRows().AddRow(1, "三体", "刘慈欣", 1, 2300, 5))
	mock.ExpectQuery("SELECT \\* FROM `books` WHERE `books`.`id` = \\?.*FOR UPDATE").
		WillReturnRows(bookRows())

	repo := NewBookRepository(db)
	b, err := repo.LockByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, b.Stock)

	_, err = repo.LockByID(context.Background(), 2)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestBookRepository_UpdateSkipsStock(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE `books` SET `author`=\\?,`description`=\\?,`genre_id`=\\?,`image_url`=\\?,`price`=\\?,`rating`=\\?,`title`=\\?,`updated_at`=\\? WHERE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	b := &book.Book{ID: 1, Title: "三体", Author: "刘慈欣", GenreID: 1, Price: 2300, Stock: 99, UpdatedAt: time.Now()}
	require.NoError(t, NewBookRepository(db).Update(context.Background(), b))
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	const cas = "UPDATE `orders` SET `status`=\\?,`updated_at`=\\? WHERE id = \\? AND status = \\?"

	t.Run("当前状态匹配", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(cas).
			WithArgs("CANCELLED", sqlmock.AnyArg(), 3, "CONFIRMED").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewOrderRepository(db).UpdateStatus(ctx, 3, order.StatusConfirmed, order.StatusCancelled)
		require.NoError(t, err)
	})

	t.Run("状态已被并发修改", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(cas).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `orders` WHERE id = \\?").
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

		err := NewOrderRepository(db).UpdateStatus(ctx, 3, order.StatusConfirmed, order.StatusCancelled)
		assert.ErrorIs(t, err, order.ErrStatusConflict)
	})

	t.Run("订单不存在", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(cas).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `orders` WHERE id = \\?").
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

		err := NewOrderRepository(db).UpdateStatus(ctx, 3, order.StatusConfirmed, order.StatusCancelled)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("回填ID", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(42, 1))

		u := user.NewUser("reader@example.com", "hashed", "Reader")
		require.NoError(t, NewUserRepository(db).Create(ctx, u))
		assert.Equal(t, uint(42), u.ID)
	})

	t.Run("邮箱唯一索引冲突", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO `users`").
			WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'reader@example.com' for key 'users.idx_users_email'"})

		err := NewUserRepository(db).Create(ctx, user.NewUser("reader@example.com", "hashed", "Reader"))
		assert.ErrorIs(t, err, user.ErrEmailDuplicate)
	})
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, isDuplicateError(&mysqldriver.MySQLError{Number: 1062}))
	assert.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	assert.False(t, isDuplicateError(&mysqldriver.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateError(nil))
}

func TestWishlistRepository_AddIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	const upsert = "INSERT INTO `wishlist_items` .* ON DUPLICATE KEY UPDATE `id`=`id`"
	mock.ExpectExec(upsert).WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(upsert).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewWishlistRepository(db)
	item := &wishlist.Item{UserID: 1, BookID: 2, AddedAt: time.Now()}
	added, err := repo.Add(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, uint(5), item.ID)

	added, err = repo.Add(context.Background(), &wishlist.Item{UserID: 1, BookID: 2, AddedAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, added)
}

func TestCartRepository_SaveUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO `cart_items` .* ON DUPLICATE KEY UPDATE `quantity`=.*`updated_at`=").
		WillReturnResult(sqlmock.NewResult(7, 1))

	item, err := cart.NewItem(1, 2, 3)
	require.NoError(t, err)
	require.NoError(t, NewCartRepository(db).Save(context.Background(), item))
	assert.Equal(t, uint(7), item.ID)
}

func TestTxManager(t *testing.T) {
	ctx := context.Background()

	t.Run("提交并复用外层事务", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT \\* FROM `books`.*FOR UPDATE").
			WillReturnRows(bookRows().AddRow(1, "三体", "刘慈欣", 1, 2300, 5))
		mock.ExpectExec("UPDATE `books` SET `stock`=stock \\+ \\?").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tm := NewTxManager(db)
		books := NewBookRepository(db)
		err := tm.Transaction(ctx, func(ctx context.Context) error {
			if _, err := books.LockByID(ctx, 1); err != nil {
				return err
			}
			return tm.Transaction(ctx, func(ctx context.Context) error {
				return books.UpdateStock(ctx, 1, -1)
			})
		})
		require.NoError(t, err)
	})

	t.Run("出错回滚", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `books` SET `stock`=stock \\+ \\?").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT \\* FROM `books` WHERE `books`.`id` = \\?").
			WillReturnRows(bookRows().AddRow(1, "三体", "刘慈欣", 1, 2300, 0))
		mock.ExpectRollback()

		books := NewBookRepository(db)
		err := NewTxManager(db).Transaction(ctx, func(ctx context.Context) error {
			return books.UpdateStock(ctx, 1, -1)
		})
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
	})
}

// 加购先锁图书行再读购物车条目,同一本书的并发加购在锁上排队,不会丢失累加
func TestCartAdd_LocksBookBeforeReadingLine(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `books` WHERE `books`.`id` = \\?.*FOR UPDATE").
		WillReturnRows(bookRows().AddRow(2, "三体", "刘慈欣", 1, 2300, 5))
	mock.ExpectQuery("SELECT \\* FROM `cart_items` WHERE user_id = \\? AND book_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "book_id", "quantity"}).AddRow(7, 1, 2, 2))
	mock.ExpectExec("INSERT INTO `cart_items` .* ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(7, 2))
	mock.ExpectCommit()

	uc := appcart.NewCartUseCase(NewTxManager(db), NewCartRepository(db), NewBookRepository(db), zap.NewNop())
	item, err := uc.Add(context.Background(), 1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
}
