//go:build wireinject
// +build wireinject

// Wire依赖注入配置,修改后执行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 存储/缓存/消息的实现在运行时按配置选择(见infra.go),
// 这里通过wire.FieldsOf把Infrastructure的字段作为Provider。

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookrec/internal/application/book"
	appcart "github.com/xiebiao/bookrec/internal/application/cart"
	apporder "github.com/xiebiao/bookrec/internal/application/order"
	appuser "github.com/xiebiao/bookrec/internal/application/user"
	appwishlist "github.com/xiebiao/bookrec/internal/application/wishlist"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/internal/infrastructure/config"
	"github.com/xiebiao/bookrec/internal/interface/http/handler"
	"github.com/xiebiao/bookrec/internal/interface/http/middleware"
	"github.com/xiebiao/bookrec/internal/interface/http/router"
	"github.com/xiebiao/bookrec/pkg/jwt"
)

// infrastructureSet 基础设施:仓储、缓存、会话、消息
var infrastructureSet = wire.NewSet(
	wire.FieldsOf(new(*Infrastructure),
		"TxManager", "UserRepo", "AddressRepo", "BookRepo", "GenreRepo",
		"CartRepo", "WishRepo", "OrderRepo",
		"BookCache", "Sessions", "Limiter", "Publisher", "Hasher",
	),
	provideOrderBookCache,
	provideRevocationChecker,
)

var domainSet = wire.NewSet(
	user.NewService,
)

// applicationSet 所有用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewProfileUseCase,
	appuser.NewDeleteAccountUseCase,
	appuser.NewAdminUserUseCase,
	appbook.NewCatalogUseCase,
	appbook.NewCatalogAdminUseCase,
	appcart.NewCartUseCase,
	appwishlist.NewWishlistUseCase,
	provideTransitionDeps,
	apporder.NewPlaceOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewUpdateOrderStatusUseCase,
	apporder.NewCancelAllOrdersUseCase,
	apporder.NewOrderQueryUseCase,
)

// middlewareSet JWT管理器和认证中间件
var middlewareSet = wire.NewSet(
	provideJWTManager,
	wire.Bind(new(appuser.TokenIssuer), new(*jwt.Manager)),
	wire.Bind(new(middleware.TokenParser), new(*jwt.Manager)),
	middleware.NewAuthMiddleware,
)

var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewProfileHandler,
	handler.NewBookHandler,
	handler.NewCartHandler,
	handler.NewWishlistHandler,
	handler.NewOrderHandler,
	handler.NewAdminUserHandler,
	provideHandlers,
	router.NewRouter,
)

// InitializeApp 组装HTTP应用
func InitializeApp(cfg *config.Config, log *zap.Logger, infra *Infrastructure) (*App, error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideApp,
	)
	return nil, nil
}
