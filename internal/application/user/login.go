package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookrec/internal/domain/user"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
	"github.com/xiebiao/bookrec/pkg/metrics"
)

// LoginUseCase 用户登录用例
// 1. 限流检查 2. 校验邮箱密码 3. 签发Token对 4. 保存会话
type LoginUseCase struct {
	userService user.Service
	tokens      TokenIssuer
	sessions    SessionStore
	limiter     LoginLimiter
	log         *zap.Logger
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	tokens TokenIssuer,
	sessions SessionStore,
	limiter LoginLimiter,
	log *zap.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		tokens:      tokens,
		sessions:    sessions,
		limiter:     limiter,
		log:         log,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := uc.limiter.Check(ctx, req.Email); err != nil {
		if errors.Is(err, apperrors.ErrTooManyRequests) {
			metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
			return nil, err
		}
		// 限流存储不可用时放行
		uc.log.Warn("登录限流检查失败", zap.Error(err))
	}

	u, err := uc.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			if rerr := uc.limiter.RecordFailure(ctx, req.Email); rerr != nil {
				uc.log.Warn("记录登录失败次数失败", zap.Error(rerr))
			}
		}
		return nil, err
	}

	pair, err := uc.tokens.GenerateToken(u.ID, u.Email, u.Roles)
	if err != nil {
		return nil, err
	}

	// 会话有效期与Refresh Token一致
	session := map[string]any{
		"user_id":  u.ID,
		"email":    u.Email,
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	if err := uc.sessions.SaveSession(ctx, u.ID, session, uc.tokens.RefreshTokenTTL()); err != nil {
		uc.log.Warn("保存会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}
	if err := uc.limiter.Reset(ctx, req.Email); err != nil {
		uc.log.Warn("重置登录失败次数失败", zap.Error(err))
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	uc.log.Info("用户登录", zap.Uint("user_id", u.ID), zap.String("ip", req.ClientIP))

	return &LoginResponse{
		User:         *NewUserInfo(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// RefreshTokenUseCase 用Refresh Token换取新的Access Token
type RefreshTokenUseCase struct {
	tokens   TokenIssuer
	sessions SessionStore
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(tokens TokenIssuer, sessions SessionStore) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{tokens: tokens, sessions: sessions}
}

// Execute 改密或注销之前签发的Refresh Token不能再用
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	since, err := uc.sessions.RevokedSince(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if claims.IssuedBefore(since) {
		return nil, apperrors.ErrInvalidToken
	}

	accessToken, err := uc.tokens.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(uc.tokens.AccessTokenTTL().Seconds()),
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessions SessionStore
	log      *zap.Logger
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessions SessionStore, log *zap.Logger) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions, log: log}
}

// Execute 把Access Token拉黑到它过期为止,然后删除会话
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string, expiresAt time.Time) error {
	if ttl := time.Until(expiresAt); ttl > 0 {
		if err := uc.sessions.AddToBlacklist(ctx, accessToken, ttl); err != nil {
			return err
		}
	}
	if err := uc.sessions.DeleteSession(ctx, userID); err != nil {
		return err
	}
	uc.log.Info("用户登出", zap.Uint("user_id", userID))
	return nil
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间(秒)
}

// RefreshResponse 刷新响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
