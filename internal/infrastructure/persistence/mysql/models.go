package mysql

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// 以下是GORM数据模型,与domain实体分离,由各仓储负责转换

// UserModel 用户表,账号注销时物理删除(邮箱可重新注册)
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱(登录名)"`
	FullName  string    `gorm:"size:100;not null;comment:姓名"`
	Password  string    `gorm:"size:255;not null;comment:密码(bcrypt)"`
	Roles     string    `gorm:"size:100;not null;default:ROLE_USER;comment:角色,逗号分隔"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (UserModel) TableName() string { return "users" }

func joinRoles(roles []string) string { return strings.Join(roles, ",") }

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// AddressModel 地址表,一个用户一条
type AddressModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex;not null;comment:用户ID"`
	Street    string `gorm:"size:255;not null"`
	City      string `gorm:"size:100;not null"`
	State     string `gorm:"size:100;not null"`
	Country   string `gorm:"size:100;not null"`
	ZipCode   string `gorm:"size:20;not null"`
	Phone     string `gorm:"size:30;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AddressModel) TableName() string { return "addresses" }

// GenreModel 分类表
type GenreModel struct {
	ID        uint   `gorm:"primaryKey"`
	Tag       string `gorm:"uniqueIndex;size:50;not null;comment:分类名"`
	CreatedAt time.Time
}

func (GenreModel) TableName() string { return "genres" }

// BookModel 图书表,软删除(历史订单只引用快照)
type BookModel struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"index:idx_search;size:255;not null;comment:书名"`
	Author      string     `gorm:"index:idx_search;size:255;not null;comment:作者"`
	Description string     `gorm:"type:text;comment:简介"`
	GenreID     uint       `gorm:"index;not null;comment:分类ID"`
	Genre       GenreModel `gorm:"foreignKey:GenreID"`
	Price       int64      `gorm:"index:idx_list;not null;comment:价格(分)"`
	ImageURL    string     `gorm:"size:500;comment:封面URL"`
	Rating      float64    `gorm:"not null;default:0;comment:评分0-5"`
	Stock       int        `gorm:"not null;default:0;comment:库存"`
	CreatedAt   time.Time  `gorm:"index:idx_list"`
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (BookModel) TableName() string { return "books" }

// CartItemModel 购物车表
type CartItemModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:uk_cart_user_book;not null"`
	BookID    uint      `gorm:"uniqueIndex:uk_cart_user_book;index;not null"`
	Quantity  int       `gorm:"not null;comment:数量>=1"`
	AddedAt   time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

func (CartItemModel) TableName() string { return "cart_items" }

// WishlistItemModel 心愿单表
type WishlistItemModel struct {
	ID      uint      `gorm:"primaryKey"`
	UserID  uint      `gorm:"uniqueIndex:uk_wishlist_user_book;not null"`
	BookID  uint      `gorm:"uniqueIndex:uk_wishlist_user_book;index;not null"`
	AddedAt time.Time `gorm:"not null"`
}

func (WishlistItemModel) TableName() string { return "wishlist_items" }

// OrderModel 订单表,与OrderItemModel一对多
type OrderModel struct {
	ID        uint             `gorm:"primaryKey"`
	OrderNo   string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID    uint             `gorm:"index;not null;comment:下单用户ID"`
	Total     int64            `gorm:"not null;comment:总金额(分)"`
	Status    string           `gorm:"index;size:32;not null;comment:订单状态"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time        `gorm:"index"`
	UpdatedAt time.Time
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 订单明细,保存下单时的图书快照
type OrderItemModel struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  uint   `gorm:"index;not null"`
	BookID   uint   `gorm:"index;not null"`
	Title    string `gorm:"size:255;not null"`
	Price    int64  `gorm:"not null;comment:下单时单价(分)"`
	ImageURL string `gorm:"size:500"`
	Quantity int    `gorm:"not null"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// AutoMigrate 建表/加字段,不会删除已有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&AddressModel{},
		&GenreModel{},
		&BookModel{},
		&CartItemModel{},
		&WishlistItemModel{},
		&OrderModel{},
		&OrderItemModel{},
	)
}
