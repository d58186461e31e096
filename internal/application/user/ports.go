// Package user 用户相关用例:注册、登录、个人资料、地址、注销账号、用户管理
package user

import (
	"context"
	"time"

	"github.com/xiebiao/bookrec/pkg/jwt"
)

// SessionStore 会话与Token吊销
// 生产环境由Redis实现,测试和内存模式使用memory实现
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, data map[string]any, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)

	// RevokeAll 此刻之前签发的Token全部失效
	RevokeAll(ctx context.Context, userID uint, ttl time.Duration) error
	// RevokedSince 未吊销返回零值
	RevokedSince(ctx context.Context, userID uint) (time.Time, error)
}

// LoginLimiter 登录失败限流
type LoginLimiter interface {
	// Check 冷却期内返回ErrTooManyRequests
	Check(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// TokenIssuer 签发和校验Token,由jwt.Manager实现
type TokenIssuer interface {
	GenerateToken(userID uint, email string, roles []string) (*jwt.TokenPair, error)
	ParseRefreshToken(tokenString string) (*jwt.Claims, error)
	RefreshAccessToken(refreshToken string) (string, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

var _ TokenIssuer = (*jwt.Manager)(nil)
