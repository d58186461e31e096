package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Service 用户领域服务
// 注册、认证、改密都涉及密码哈希,放在领域服务里而不是实体上
type Service interface {
	// Register 校验并创建用户(不含地址,地址由应用层在同一事务中创建)
	Register(ctx context.Context, email, password, fullName string) (*User, error)

	// Authenticate 邮箱不存在或密码错误统一返回ErrInvalidCredentials
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// ChangePassword 校验当前密码后更新为新密码
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
}

type service struct {
	repo   Repository
	hasher PasswordHasher
}

// NewService 创建用户领域服务
func NewService(repo Repository, hasher PasswordHasher) Service {
	return &service{repo: repo, hasher: hasher}
}

func (s *service) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if err := ValidateFullName(fullName); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := NewUser(email, hashed, fullName)
	// 邮箱唯一性由唯一索引保证,仓储把冲突转换为ErrEmailDuplicate
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

func (s *service) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.Password, currentPassword); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return ErrIncorrectPassword
		}
		return err
	}
	if currentPassword == newPassword {
		return ErrSamePassword
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.SetPassword(hashed)
	return s.repo.Update(ctx, user)
}

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

// NormalizeEmail 去空格并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail 邮箱格式校验
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePasswordStrength 8-20位,必须同时包含字母和数字
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return ErrWeakPassword
	}
	if !letterPattern.MatchString(password) || !digitPattern.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}

// ValidateFullName 1-100个字符(按rune计)
func ValidateFullName(fullName string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(fullName))
	if n < 1 || n > 100 {
		return ErrInvalidFullName
	}
	return nil
}
