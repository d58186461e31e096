package user

import (
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

// 用户领域错误
var (
	ErrUserNotFound       = apperrors.ErrUserNotFound
	ErrEmailDuplicate     = apperrors.ErrEmailDuplicate
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
	ErrWeakPassword       = apperrors.ErrWeakPassword

	// ErrPasswordMismatch 哈希比对不一致,由PasswordHasher返回
	ErrPasswordMismatch = apperrors.ErrInvalidPassword

	// ErrIncorrectPassword 修改密码时当前密码不正确
	ErrIncorrectPassword = apperrors.New(apperrors.ErrCodeIncorrectPassword, "当前密码不正确")

	ErrInvalidEmail    = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	ErrInvalidFullName = apperrors.New(apperrors.ErrCodeInvalidParams, "姓名长度应为1-100个字符")
	ErrSamePassword    = apperrors.New(apperrors.ErrCodeBusinessError, "新密码不能与当前密码相同")
)
