package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookrec/pkg/errors"
	"github.com/xiebiao/bookrec/pkg/response"
)

// RouteRoles 路由 → 允许的角色
// 键为"METHOD 路由模板",如"GET /api/v1/orders/:id"
type RouteRoles map[string][]string

// Key 生成表键
func (RouteRoles) Key(method, fullPath string) string {
	return method + " " + fullPath
}

// Authorize 静态角色表鉴权,必须放在RequireAuth之后
// 表中没有的路由一律拒绝
func Authorize(table RouteRoles) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, ok := table[table.Key(c.Request.Method, c.FullPath())]
		if !ok {
			response.Abort(c, apperrors.ErrForbidden)
			return
		}
		roles := GetRoles(c)
		if !slices.ContainsFunc(allowed, func(r string) bool { return slices.Contains(roles, r) }) {
			response.Abort(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
