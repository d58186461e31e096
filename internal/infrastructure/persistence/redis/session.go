package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// SessionStore 会话与Token黑名单
//
// Key设计:
//
//	session:{user_id}          登录会话(Hash),TTL = Refresh Token有效期
//	blacklist:{sha256(token)}  登出的Token,TTL = Token剩余有效期
//	revoked:{user_id}          该时间点之前签发的Token全部失效(改密、注销)
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(userID uint) string { return fmt.Sprintf("session:%d", userID) }
func revokedKey(userID uint) string { return fmt.Sprintf("revoked:%d", userID) }

// blacklistKey Token较长,取摘要作为key
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}

// SaveSession 保存登录会话
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, data map[string]any, ttl time.Duration) error {
	key := sessionKey(userID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Wrap(err, "保存会话失败")
	}
	return nil
}

// GetSession 获取登录会话,不存在返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "获取会话失败")
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// DeleteSession 删除会话
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "删除会话失败")
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单,ttl<=0时不写入(Token已过期)
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsInBlacklist Token是否已被拉黑
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return n > 0, nil
}

// RevokeAll 让用户此刻之前签发的所有Token失效,并删除会话
// ttl取Refresh Token有效期,之后旧Token自然过期
func (s *SessionStore) RevokeAll(ctx context.Context, userID uint, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, revokedKey(userID), time.Now().Unix(), ttl)
	pipe.Del(ctx, sessionKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Wrap(err, "吊销Token失败")
	}
	return nil
}

// RevokedSince 返回吊销时间点,未吊销返回零值
func (s *SessionStore) RevokedSince(ctx context.Context, userID uint) (time.Time, error) {
	val, err := s.client.Get(ctx, revokedKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return time.Time{}, nil
		}
		return time.Time{}, apperrors.Wrap(err, "查询吊销状态失败")
	}
	sec, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, apperrors.Wrap(err, "吊销时间格式错误")
	}
	return time.Unix(sec, 0), nil
}
