package address

import (
	apperrors "github.com/xiebiao/bookrec/pkg/errors"
)

var (
	ErrAddressNotFound = apperrors.New(apperrors.ErrCodeAddressNotFound, "地址不存在")
	ErrInvalidAddress  = apperrors.New(apperrors.ErrCodeInvalidParams, "街道、城市、省份、国家不能为空")
	ErrInvalidZipCode  = apperrors.New(apperrors.ErrCodeInvalidParams, "邮编格式不正确")
	ErrInvalidPhone    = apperrors.New(apperrors.ErrCodeInvalidParams, "电话格式不正确")
)
