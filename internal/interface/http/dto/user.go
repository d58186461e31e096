package dto

// SignupRequest HTTP层注册请求
// 密码强度(字母+数字)由领域服务校验
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=255" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"secret123"`
	FullName string `json:"full_name" binding:"required,max=100" example:"Alice"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RefreshRequest 刷新Token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest 只允许修改姓名
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,max=100" example:"Alice Liddell"`
}

// ChangePasswordRequest 修改密码
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=20"`
}

// AddressRequest 保存收货地址
type AddressRequest struct {
	Street  string `json:"street" binding:"required,max=255" example:"1 Main St"`
	City    string `json:"city" binding:"required,max=100" example:"Springfield"`
	State   string `json:"state" binding:"required,max=100" example:"IL"`
	Country string `json:"country" binding:"required,max=100" example:"US"`
	ZipCode string `json:"zip_code" binding:"required,max=12" example:"62701"`
	Phone   string `json:"phone" binding:"required,max=20" example:"+1 555 0100"`
}

// PageRequest 通用分页参数
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// Normalize 默认第1页、每页20条
func (p *PageRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
}
