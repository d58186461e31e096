package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xiebiao/bookrec/internal/domain/book"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
	"github.com/xiebiao/bookrec/pkg/metrics"
)

// SessionStore 进程内会话与黑名单,方法集与redis.SessionStore一致
type SessionStore struct {
	mu        sync.Mutex
	now       func() time.Time
	sessions  map[uint]expiring[map[string]any]
	blacklist map[string]time.Time
	revoked   map[uint]expiring[time.Time]
}

type expiring[T any] struct {
	value    T
	expireAt time.Time
}

func (e expiring[T]) alive(now time.Time) bool {
	return now.Before(e.expireAt)
}

// NewSessionStore 创建会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{
		now:       time.Now,
		sessions:  make(map[uint]expiring[map[string]any]),
		blacklist: make(map[string]time.Time),
		revoked:   make(map[uint]expiring[time.Time]),
	}
}

func (s *SessionStore) SaveSession(_ context.Context, userID uint, data map[string]any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = expiring[map[string]any]{value: data, expireAt: s.now().Add(ttl)}
	return nil
}

// GetSession 不存在或已过期返回ErrUnauthorized
func (s *SessionStore) GetSession(_ context.Context, userID uint) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || !sess.alive(s.now()) {
		return nil, apperrors.ErrUnauthorized
	}
	result := make(map[string]string, len(sess.value))
	for k, v := range sess.value {
		result[k] = fmt.Sprint(v)
	}
	return result, nil
}

func (s *SessionStore) DeleteSession(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[token] = s.now().Add(ttl)
	return nil
}

func (s *SessionStore) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expireAt, ok := s.blacklist[token]
	if !ok {
		return false, nil
	}
	if !s.now().Before(expireAt) {
		delete(s.blacklist, token)
		return false, nil
	}
	return true, nil
}

func (s *SessionStore) RevokeAll(_ context.Context, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	// 与Redis一样只保留到秒
	s.revoked[userID] = expiring[time.Time]{value: time.Unix(now.Unix(), 0), expireAt: now.Add(ttl)}
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) RevokedSince(_ context.Context, userID uint) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.revoked[userID]
	if !ok || !r.alive(s.now()) {
		return time.Time{}, nil
	}
	return r.value, nil
}

// LoginLimiter 进程内登录限流
type LoginLimiter struct {
	mu          sync.Mutex
	now         func() time.Time
	maxAttempts int
	cooldown    time.Duration
	attempts    map[string]int
	coolingTill map[string]time.Time
}

// NewLoginLimiter 创建登录限流器
func NewLoginLimiter(maxAttempts int, cooldown time.Duration) *LoginLimiter {
	return &LoginLimiter{
		now:         time.Now,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		attempts:    make(map[string]int),
		coolingTill: make(map[string]time.Time),
	}
}

func (l *LoginLimiter) Check(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	till, ok := l.coolingTill[strings.ToLower(email)]
	if !ok {
		return nil
	}
	remaining := till.Sub(l.now())
	if remaining <= 0 {
		delete(l.coolingTill, strings.ToLower(email))
		return nil
	}
	return apperrors.ErrTooManyRequests.WithMessage(
		fmt.Sprintf("登录失败次数过多,请%d分钟后再试", int(remaining.Minutes())+1))
}

func (l *LoginLimiter) RecordFailure(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := strings.ToLower(email)
	l.attempts[key]++
	if l.attempts[key] >= l.maxAttempts {
		l.coolingTill[key] = l.now().Add(l.cooldown)
		delete(l.attempts, key)
	}
	return nil
}

func (l *LoginLimiter) Reset(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := strings.ToLower(email)
	delete(l.attempts, key)
	delete(l.coolingTill, key)
	return nil
}

// BookCache 进程内图书缓存
type BookCache struct {
	mu    sync.RWMutex
	now   func() time.Time
	ttl   time.Duration
	books map[uint]expiring[book.Book]
}

// NewBookCache 创建图书缓存
func NewBookCache(ttl time.Duration) *BookCache {
	return &BookCache{now: time.Now, ttl: ttl, books: make(map[uint]expiring[book.Book])}
}

func (c *BookCache) Get(_ context.Context, id uint) (*book.Book, error) {
	c.mu.RLock()
	entry, ok := c.books[id]
	c.mu.RUnlock()
	if !ok || !entry.alive(c.now()) {
		metrics.BookCacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.BookCacheRequestsTotal.WithLabelValues("hit").Inc()
	b := entry.value
	return &b, nil
}

func (c *BookCache) Set(_ context.Context, b *book.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books[b.ID] = expiring[book.Book]{value: *b, expireAt: c.now().Add(c.ttl)}
	return nil
}

func (c *BookCache) Delete(_ context.Context, ids ...uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.books, id)
	}
	return nil
}
