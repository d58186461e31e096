package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookrec/pkg/errors"
	"github.com/xiebiao/bookrec/pkg/jwt"
	"github.com/xiebiao/bookrec/pkg/response"
)

// Context中的键
const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRoles  = "roles"
	ctxToken  = "access_token"
	ctxExpiry = "token_expires_at"
)

// TokenParser 校验Access Token
type TokenParser interface {
	ParseToken(tokenString string) (*jwt.Claims, error)
}

// RevocationChecker 黑名单与整体吊销
type RevocationChecker interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
	RevokedSince(ctx context.Context, userID uint) (time.Time, error)
}

// AuthMiddleware JWT认证中间件
type AuthMiddleware struct {
	tokens   TokenParser
	sessions RevocationChecker
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(tokens TokenParser, sessions RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions}
}

// RequireAuth 要求登录
//
//	Authorization: Bearer <token>
//
// 依次检查:格式 → 黑名单(已登出) → 签名/过期 → 是否在改密/注销之前签发
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, apperrors.ErrUnauthorized)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Abort(c, apperrors.ErrInvalidToken.WithMessage("Token格式错误"))
			return
		}
		tokenString := parts[1]
		ctx := c.Request.Context()

		blacklisted, err := m.sessions.IsInBlacklist(ctx, tokenString)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if blacklisted {
			response.Abort(c, apperrors.ErrTokenExpired.WithMessage("Token已失效,请重新登录"))
			return
		}

		claims, err := m.tokens.ParseToken(tokenString)
		if err != nil {
			response.Abort(c, err)
			return
		}

		since, err := m.sessions.RevokedSince(ctx, claims.UserID)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if claims.IssuedBefore(since) {
			response.Abort(c, apperrors.ErrTokenExpired.WithMessage("Token已失效,请重新登录"))
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRoles, claims.Roles)
		c.Set(ctxToken, tokenString)
		if claims.ExpiresAt != nil {
			c.Set(ctxExpiry, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// GetUserID 未登录返回0
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// MustGetUserID 只能在RequireAuth之后使用
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}

// GetEmail 当前登录用户邮箱,访问日志使用
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

func GetRoles(c *gin.Context) []string {
	return c.GetStringSlice(ctxRoles)
}

// GetToken 当前请求的Access Token及其过期时间
func GetToken(c *gin.Context) (string, time.Time) {
	return c.GetString(ctxToken), c.GetTime(ctxExpiry)
}
