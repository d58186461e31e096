package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 应用错误
// Code是业务错误码,Message返回给客户端,Err只进日志
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`

	base *AppError // WithMessage派生时指向原错误
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 派生错误与原哨兵错误视为同一种
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.base != nil && e.base == t
}

// New 创建AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装底层错误(数据库、网络),统一成内部错误
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 400xx 业务规则  401xx 认证  403xx 授权  404xx 资源不存在
// 409xx 参数错误  429xx 限流  500xx 服务端错误

const (
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	ErrCodeUnauthorized       = 40100 // 未登录
	ErrCodeInvalidToken       = 40101 // Token无效
	ErrCodeTokenExpired       = 40102 // Token过期
	ErrCodeInvalidPassword    = 40103 // 密码错误
	ErrCodeInvalidCredentials = 40105 // 账号或密码错误

	ErrCodeForbidden = 40300 // 无权限

	ErrCodeNotFound             = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound         = 40401 // 用户不存在
	ErrCodeBookNotFound         = 40402 // 图书不存在
	ErrCodeOrderNotFound        = 40403 // 订单不存在
	ErrCodeGenreNotFound        = 40404 // 分类不存在
	ErrCodeCartItemNotFound     = 40405 // 购物车条目不存在
	ErrCodeWishlistItemNotFound = 40406 // 心愿单条目不存在
	ErrCodeAddressNotFound      = 40407 // 地址不存在

	ErrCodeBusinessError           = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock       = 40001 // 库存不足
	ErrCodeInvalidOrderStatus      = 40002 // 订单状态非法
	ErrCodeEmailDuplicate          = 40003 // 邮箱已存在
	ErrCodeWeakPassword            = 40005 // 密码强度不足
	ErrCodeCartEmpty               = 40006 // 购物车为空
	ErrCodeOrderNotCancellable     = 40007 // 订单不可取消
	ErrCodeGenreDuplicate          = 40008 // 分类已存在
	ErrCodeDuplicateEntry          = 40009 // 重复记录(通用)
	ErrCodeGenreInUse              = 40010 // 分类仍被引用
	ErrCodeIncorrectPassword       = 40011 // 当前密码错误
	ErrCodeInvalidStatusTransition = 40012 // 非法的状态流转

	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败

	ErrCodeTooManyRequests = 42900 // 请求过于频繁
)

var (
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	ErrUnauthorized       = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword    = New(ErrCodeInvalidPassword, "密码错误")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "邮箱或密码错误")
	ErrForbidden          = New(ErrCodeForbidden, "无权限访问")

	ErrNotFound      = New(ErrCodeNotFound, "资源不存在")
	ErrUserNotFound  = New(ErrCodeUserNotFound, "用户不存在")
	ErrBookNotFound  = New(ErrCodeBookNotFound, "图书不存在")
	ErrOrderNotFound = New(ErrCodeOrderNotFound, "订单不存在")

	ErrInsufficientStock  = New(ErrCodeInsufficientStock, "库存不足")
	ErrInvalidOrderStatus = New(ErrCodeInvalidOrderStatus, "无效的订单状态")
	ErrEmailDuplicate     = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrWeakPassword       = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")

	ErrInvalidParams   = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError       = New(ErrCodeBindError, "参数格式错误")
	ErrTooManyRequests = New(ErrCodeTooManyRequests, "请求过于频繁，请稍后再试")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError,不是AppError的包装成内部错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// WithMessage 基于已有错误码派生一条更具体的提示
// 例: book.ErrInsufficientStock.WithMessage("《Go语言实战》库存不足")
func (e *AppError) WithMessage(message string) *AppError {
	base := e
	if e.base != nil {
		base = e.base
	}
	return &AppError{Code: e.Code, Message: message, Err: e.Err, base: base}
}

// HTTPStatus 错误码 → HTTP状态码
func HTTPStatus(code int) int {
	switch code / 100 {
	case 400, 409:
		return http.StatusBadRequest
	case 401:
		return http.StatusUnauthorized
	case 403:
		return http.StatusForbidden
	case 404:
		return http.StatusNotFound
	case 429:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
