package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// LoginLimiter 按邮箱限制登录失败次数
// 连续失败maxAttempts次后进入冷却,冷却期间直接拒绝;登录成功清零
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	cooldown    time.Duration
}

// NewLoginLimiter 创建登录限流器
func NewLoginLimiter(client *redis.Client, maxAttempts int, cooldown time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, cooldown: cooldown}
}

func attemptsKey(email string) string { return "login_attempts:" + strings.ToLower(email) }
func cooldownKey(email string) string { return "login_cooldown:" + strings.ToLower(email) }

// Check 冷却中返回ErrTooManyRequests
func (l *LoginLimiter) Check(ctx context.Context, email string) error {
	ttl, err := l.client.TTL(ctx, cooldownKey(email)).Result()
	if err != nil {
		return apperrors.Wrap(err, "检查登录限流失败")
	}
	// key不存在时TTL返回负值
	if ttl > 0 {
		return apperrors.ErrTooManyRequests.WithMessage(
			fmt.Sprintf("登录失败次数过多,请%d分钟后再试", int(ttl.Minutes())+1))
	}
	return nil
}

// RecordFailure 记录一次失败,达到上限后开始冷却
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	key := attemptsKey(email)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Wrap(err, "记录登录失败次数失败")
	}

	if incr.Val() >= int64(l.maxAttempts) {
		pipe := l.client.TxPipeline()
		pipe.Set(ctx, cooldownKey(email), "1", l.cooldown)
		pipe.Del(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			return apperrors.Wrap(err, "设置登录冷却失败")
		}
	}
	return nil
}

// Reset 登录成功后清除计数
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, attemptsKey(email), cooldownKey(email)).Err(); err != nil {
		return apperrors.Wrap(err, "重置登录限流失败")
	}
	return nil
}
