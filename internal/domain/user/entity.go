package user

import (
	"slices"
	"strings"
	"time"
)

// 角色
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User 用户实体(聚合根)
// Email即登录名,全局唯一;Password只保存哈希值
type User struct {
	ID        uint
	Email     string
	FullName  string
	Password  string
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建普通用户,默认角色ROLE_USER
func NewUser(email, hashedPassword, fullName string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		FullName:  fullName,
		Password:  hashedPassword,
		Roles:     []string{RoleUser},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasRole 是否拥有角色
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// UpdateFullName 修改姓名
func (u *User) UpdateFullName(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if err := ValidateFullName(fullName); err != nil {
		return err
	}
	u.FullName = fullName
	u.UpdatedAt = time.Now()
	return nil
}

// SetPassword 替换密码哈希
func (u *User) SetPassword(hashedPassword string) {
	u.Password = hashedPassword
	u.UpdatedAt = time.Now()
}
