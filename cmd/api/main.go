// @title           BookRec API
// @version         1.0
// @description     图书推荐电商后端:目录、购物车、心愿单、订单与账户
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     格式: Bearer {access_token}
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/xiebiao/bookrec/docs"
	"github.com/xiebiao/bookrec/internal/application/event"
	apporder "github.com/xiebiao/bookrec/internal/application/order"
	appuser "github.com/xiebiao/bookrec/internal/application/user"
	"github.com/xiebiao/bookrec/internal/domain/book"
	"github.com/xiebiao/bookrec/internal/domain/order"
	"github.com/xiebiao/bookrec/internal/domain/txn"
	"github.com/xiebiao/bookrec/internal/domain/user"
	"github.com/xiebiao/bookrec/internal/infrastructure/config"
	"github.com/xiebiao/bookrec/internal/interface/http/handler"
	"github.com/xiebiao/bookrec/internal/interface/http/router"
	"github.com/xiebiao/bookrec/pkg/jwt"
	"github.com/xiebiao/bookrec/pkg/logger"
	"github.com/xiebiao/bookrec/pkg/tracing"
)

// App 组装完成的应用
type App struct {
	Engine   *gin.Engine
	Register *appuser.RegisterUseCase
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, syncLog, err := logger.Init(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer syncLog()

	if err := run(cfg, zlog); err != nil {
		zlog.Error("服务异常退出", zap.Error(err))
		syncLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("配置加载成功",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("rabbitmq", cfg.RabbitMQ.Enabled),
	)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(tracing.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
			Insecure:    cfg.Tracing.Insecure,
		})
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Warn("关闭TracerProvider失败", zap.Error(err))
			}
		}()
	}

	infra, cleanup, err := newInfrastructure(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	app, err := InitializeApp(cfg, log, infra)
	if err != nil {
		return err
	}

	if cfg.Admin.Email != "" {
		created, err := app.Register.EnsureAdmin(context.Background(), appuser.RegisterRequest{
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			FullName: cfg.Admin.FullName,
		})
		if err != nil {
			return fmt.Errorf("初始化管理员失败: %w", err)
		}
		if created {
			log.Info("管理员账号已就绪", zap.String("email", cfg.Admin.Email))
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("收到退出信号", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("HTTP服务启动失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务关闭失败: %w", err)
	}
	log.Info("HTTP服务已关闭")
	return nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideTransitionDeps(
	txManager txn.Manager,
	orderRepo order.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	cache apporder.BookCache,
	publisher event.Publisher,
	log *zap.Logger,
) apporder.TransitionDeps {
	return apporder.TransitionDeps{
		TxManager: txManager,
		OrderRepo: orderRepo,
		BookRepo:  bookRepo,
		UserRepo:  userRepo,
		Cache:     cache,
		Publisher: publisher,
		Log:       log,
	}
}

func provideHandlers(
	userHandler *handler.UserHandler,
	profileHandler *handler.ProfileHandler,
	bookHandler *handler.BookHandler,
	cartHandler *handler.CartHandler,
	wishlistHandler *handler.WishlistHandler,
	orderHandler *handler.OrderHandler,
	adminUserHandler *handler.AdminUserHandler,
) *router.Handlers {
	return &router.Handlers{
		User:      userHandler,
		Profile:   profileHandler,
		Book:      bookHandler,
		Cart:      cartHandler,
		Wishlist:  wishlistHandler,
		Order:     orderHandler,
		AdminUser: adminUserHandler,
	}
}

func provideApp(engine *gin.Engine, register *appuser.RegisterUseCase) *App {
	return &App{Engine: engine, Register: register}
}
