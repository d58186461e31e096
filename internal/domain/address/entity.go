// Package address 收货地址
//
// 每个用户最多一条地址,注册时以默认值创建,之后只允许整体覆盖。
package address

import (
	"regexp"
	"strings"
	"time"
)

// 注册时写入的默认值
const (
	DefaultStreet  = "Default Street"
	DefaultCity    = "Default City"
	DefaultState   = "Default State"
	DefaultCountry = "Default Country"
	DefaultZipCode = "000000"
	DefaultPhone   = "0000000000"
)

// Address 收货地址
type Address struct {
	ID        uint
	UserID    uint
	Street    string
	City      string
	State     string
	Country   string
	ZipCode   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDefaultAddress 注册时使用的占位地址
func NewDefaultAddress(userID uint) *Address {
	now := time.Now()
	return &Address{
		UserID:    userID,
		Street:    DefaultStreet,
		City:      DefaultCity,
		State:     DefaultState,
		Country:   DefaultCountry,
		ZipCode:   DefaultZipCode,
		Phone:     DefaultPhone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Fields 可修改的地址字段
type Fields struct {
	Street  string
	City    string
	State   string
	Country string
	ZipCode string
	Phone   string
}

var (
	zipPattern   = regexp.MustCompile(`^[A-Za-z0-9 -]{3,12}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 -]{6,20}$`)
)

// Validate 字段非空,邮编/电话格式
func (f Fields) Validate() error {
	for _, v := range []string{f.Street, f.City, f.State, f.Country} {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidAddress
		}
	}
	if !zipPattern.MatchString(f.ZipCode) {
		return ErrInvalidZipCode
	}
	if !phonePattern.MatchString(f.Phone) {
		return ErrInvalidPhone
	}
	return nil
}

// Apply 整体覆盖地址字段
func (a *Address) Apply(f Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	a.Street = strings.TrimSpace(f.Street)
	a.City = strings.TrimSpace(f.City)
	a.State = strings.TrimSpace(f.State)
	a.Country = strings.TrimSpace(f.Country)
	a.ZipCode = f.ZipCode
	a.Phone = f.Phone
	a.UpdatedAt = time.Now()
	return nil
}
