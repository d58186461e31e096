// Package crypto 密码哈希实现
package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookrec/internal/domain/user"
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// BcryptHasher 实现user.PasswordHasher
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher cost<=0时使用bcrypt.DefaultCost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

// Compare 不匹配返回user.ErrPasswordMismatch
func (h *BcryptHasher) Compare(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return user.ErrPasswordMismatch
	}
	return apperrors.Wrap(err, "密码校验失败")
}
