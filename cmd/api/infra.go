package main

import (
	"fmt"

	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookrec/internal/application/book"
	"github.com/xiebiao/bookrec/internal/application/event"
	apporder "github.com/xiebiao/bookrec/internal/application/order"
	appuser "github.com/xiebiao/bookrec/internal/application/user"
	"github.com/xiebiao/bookrec/internal/domain/address"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/cart"
	"github.com/xiebiao/bookrec/internal/domain/genre"
	"github.com/xiebiao/bookrec/internal/domain/order"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/internal/domain/wishlist"
	"github.com/xiebiao/bookrec/internal/infrastructure/config"
	"github.com/xiebiao/bookrec/internal/infrastructure/crypto"
	"github.com/xiebiao/bookrec/internal/infrastructure/messaging"
	"github.com/xiebiao/bookrec/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookrec/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookrec/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookrec/internal/interface/http/middleware"
	"github.com/xiebiao/bookrec/pkg/mq"
)

// Infrastructure 按配置选定的存储、缓存、会话和消息实现
type Infrastructure struct {
	TxManager   txn.Manager
	UserRepo    user.Repository
	AddressRepo address.Repository
	BookRepo    book.Repository
	GenreRepo   genre.Repository
	CartRepo    cart.Repository
	WishRepo    wishlist.Repository
	OrderRepo   order.Repository

	BookCache appbook.Cache
	Sessions  appuser.SessionStore
	Limiter   appuser.LoginLimiter
	Publisher event.Publisher
	Hasher    user.PasswordHasher
}

// newInfrastructure 返回的cleanup按创建的逆序释放连接
func newInfrastructure(cfg *config.Config, log *zap.Logger) (*Infrastructure, func(), error) {
	infra := &Infrastructure{Hasher: crypto.NewBcryptHasher(0)}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Database.Driver {
	case config.DriverMySQL:
		db, err := mysql.NewDB(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		infra.TxManager = mysql.NewTxManager(db)
		infra.UserRepo = mysql.NewUserRepository(db)
		infra.AddressRepo = mysql.NewAddressRepository(db)
		infra.BookRepo = mysql.NewBookRepository(db)
		infra.GenreRepo = mysql.NewGenreRepository(db)
		infra.CartRepo = mysql.NewCartRepository(db)
		infra.WishRepo = mysql.NewWishlistRepository(db)
		infra.OrderRepo = mysql.NewOrderRepository(db)
	default:
		log.Warn("使用内存存储,重启后数据丢失")
		store := memory.NewStore()
		infra.TxManager = memory.NewTxManager(store)
		infra.UserRepo = memory.NewUserRepository(store)
		infra.AddressRepo = memory.NewAddressRepository(store)
		infra.BookRepo = memory.NewBookRepository(store)
		infra.GenreRepo = memory.NewGenreRepository(store)
		infra.CartRepo = memory.NewCartRepository(store)
		infra.WishRepo = memory.NewWishlistRepository(store)
		infra.OrderRepo = memory.NewOrderRepository(store)
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		infra.BookCache = redis.NewBookCache(client, cfg.Cache.BookTTL)
		infra.Sessions = redis.NewSessionStore(client)
		infra.Limiter = redis.NewLoginLimiter(client, cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginCooldown)
	} else {
		infra.BookCache = memory.NewBookCache(cfg.Cache.BookTTL)
		infra.Sessions = memory.NewSessionStore()
		infra.Limiter = memory.NewLoginLimiter(cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginCooldown)
	}

	if cfg.RabbitMQ.Enabled {
		pub, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, "topic", mq.WithLogger(log))
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("初始化消息发布者失败: %w", err)
		}
		closers = append(closers, func() { _ = pub.Close() })
		infra.Publisher = messaging.NewRabbitPublisher(pub, cfg.RabbitMQ.PublishTimeout, log)
	} else {
		infra.Publisher = messaging.NewNopPublisher(log)
	}

	return infra, cleanup, nil
}

// 以下provider把Infrastructure里的实现转换成各层需要的窄接口

func provideOrderBookCache(infra *Infrastructure) apporder.BookCache {
	return infra.BookCache
}

func provideRevocationChecker(infra *Infrastructure) middleware.RevocationChecker {
	return infra.Sessions
}
