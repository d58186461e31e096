// Package router 路由注册与角色表
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/infrastructure/config"
	"github.com/xiebiao/bookrec/internal/interface/http/handler"
	"github.com/xiebiao/bookrec/internal/interface/http/middleware"
	"github.com/xiebiao/bookrec/pkg/jwt"
	"github.com/xiebiao/bookrec/pkg/response"
)

const apiPrefix = "/api/v1"

var (
	userOnly  = []string{jwt.RoleUser}
	adminOnly = []string{jwt.RoleAdmin}
)

// RouteRoles 需要登录的路由及允许的角色
// 新增需登录的路由必须同时登记在这里,否则一律403
var RouteRoles = middleware.RouteRoles{
	"POST " + apiPrefix + "/auth/logout": userOnly,

	"GET " + apiPrefix + "/cart":                                 userOnly,
	"DELETE " + apiPrefix + "/cart":                              userOnly,
	"POST " + apiPrefix + "/cart/items":                          userOnly,
	"PUT " + apiPrefix + "/cart/items/:bookId":                   userOnly,
	"DELETE " + apiPrefix + "/cart/items/:bookId":                userOnly,
	"GET " + apiPrefix + "/wishlist":                             userOnly,
	"DELETE " + apiPrefix + "/wishlist":                          userOnly,
	"POST " + apiPrefix + "/wishlist/items":                      userOnly,
	"DELETE " + apiPrefix + "/wishlist/items/:bookId":            userOnly,
	"POST " + apiPrefix + "/wishlist/items/:bookId/move-to-cart": userOnly,

	"POST " + apiPrefix + "/orders":           userOnly,
	"GET " + apiPrefix + "/orders":            userOnly,
	"GET " + apiPrefix + "/orders/:id":        userOnly,
	"PUT " + apiPrefix + "/orders/:id/cancel": userOnly,

	"GET " + apiPrefix + "/profile":          userOnly,
	"PUT " + apiPrefix + "/profile":          userOnly,
	"DELETE " + apiPrefix + "/profile":       userOnly,
	"PUT " + apiPrefix + "/profile/password": userOnly,
	"GET " + apiPrefix + "/profile/address":  userOnly,
	"PUT " + apiPrefix + "/profile/address":  userOnly,

	"POST " + apiPrefix + "/admin/books":            adminOnly,
	"PUT " + apiPrefix + "/admin/books/:id":         adminOnly,
	"DELETE " + apiPrefix + "/admin/books/:id":      adminOnly,
	"PATCH " + apiPrefix + "/admin/books/:id/stock": adminOnly,
	"POST " + apiPrefix + "/admin/genres":           adminOnly,
	"DELETE " + apiPrefix + "/admin/genres/:id":     adminOnly,
	"GET " + apiPrefix + "/admin/orders":            adminOnly,
	"GET " + apiPrefix + "/admin/orders/:id":        adminOnly,
	"PUT " + apiPrefix + "/admin/orders/:id/status": adminOnly,
	"GET " + apiPrefix + "/admin/users":             adminOnly,
	"DELETE " + apiPrefix + "/admin/users/:id":      adminOnly,
}

// Handlers 所有HTTP处理器
type Handlers struct {
	User      *handler.UserHandler
	Profile   *handler.ProfileHandler
	Book      *handler.BookHandler
	Cart      *handler.CartHandler
	Wishlist  *handler.WishlistHandler
	Order     *handler.OrderHandler
	AdminUser *handler.AdminUserHandler
}

// NewRouter 创建Gin引擎并注册全部路由
func NewRouter(cfg *config.Config, log *zap.Logger, h *Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.CORS),
		middleware.Tracing(),
	)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group(apiPrefix)

	// 公开接口
	{
		v1.POST("/auth/signup", h.User.Signup)
		v1.POST("/auth/login", h.User.Login)
		v1.POST("/auth/refresh", h.User.Refresh)

		v1.GET("/books", h.Book.ListBooks)
		v1.GET("/books/sections", h.Book.Sections)
		v1.GET("/books/:id", h.Book.GetBook)
		v1.GET("/genres", h.Book.ListGenres)
		v1.GET("/genres/:tag/books", h.Book.ListByGenre)
	}

	// 需要登录,按RouteRoles鉴权
	authed := v1.Group("", auth.RequireAuth(), middleware.Authorize(RouteRoles))
	{
		authed.POST("/auth/logout", h.User.Logout)

		authed.GET("/cart", h.Cart.List)
		authed.DELETE("/cart", h.Cart.Clear)
		authed.POST("/cart/items", h.Cart.Add)
		authed.PUT("/cart/items/:bookId", h.Cart.Update)
		authed.DELETE("/cart/items/:bookId", h.Cart.Remove)

		authed.GET("/wishlist", h.Wishlist.List)
		authed.DELETE("/wishlist", h.Wishlist.Clear)
		authed.POST("/wishlist/items", h.Wishlist.Add)
		authed.DELETE("/wishlist/items/:bookId", h.Wishlist.Remove)
		authed.POST("/wishlist/items/:bookId/move-to-cart", h.Wishlist.MoveToCart)

		authed.POST("/orders", h.Order.PlaceOrder)
		authed.GET("/orders", h.Order.ListMine)
		authed.GET("/orders/:id", h.Order.GetMine)
		authed.PUT("/orders/:id/cancel", h.Order.Cancel)

		authed.GET("/profile", h.Profile.Get)
		authed.PUT("/profile", h.Profile.Update)
		authed.DELETE("/profile", h.Profile.DeleteAccount)
		authed.PUT("/profile/password", h.Profile.ChangePassword)
		authed.GET("/profile/address", h.Profile.GetAddress)
		authed.PUT("/profile/address", h.Profile.SaveAddress)

		admin := authed.Group("/admin")
		admin.POST("/books", h.Book.CreateBook)
		admin.PUT("/books/:id", h.Book.UpdateBook)
		admin.DELETE("/books/:id", h.Book.DeleteBook)
		admin.PATCH("/books/:id/stock", h.Book.AdjustStock)
		admin.POST("/genres", h.Book.CreateGenre)
		admin.DELETE("/genres/:id", h.Book.DeleteGenre)
		admin.GET("/orders", h.Order.ListAll)
		admin.GET("/orders/:id", h.Order.Get)
		admin.PUT("/orders/:id/status", h.Order.UpdateStatus)
		admin.GET("/users", h.AdminUser.List)
		admin.DELETE("/users/:id", h.AdminUser.Delete)
	}

	return r
}
