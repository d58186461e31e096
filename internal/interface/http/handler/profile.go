package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookrec/internal/application/user"
	"github.com/xiebiao/bookrec/internal/domain/address"
	"github.com/xiebiao/bookrec/internal/interface/http/dto"
	"github.com/xiebiao/bookrec/internal/interface/http/middleware"
	"github.com/xiebiao/bookrec/pkg/response"
)

// ProfileHandler 当前用户的资料、密码、地址、注销
type ProfileHandler struct {
	profileUseCase *appuser.ProfileUseCase
	deleteUseCase  *appuser.DeleteAccountUseCase
}

// NewProfileHandler 创建个人资料处理器
func NewProfileHandler(profileUseCase *appuser.ProfileUseCase, deleteUseCase *appuser.DeleteAccountUseCase) *ProfileHandler {
	return &ProfileHandler{profileUseCase: profileUseCase, deleteUseCase: deleteUseCase}
}

// Get 个人资料
// @Summary      个人资料
// @Description  用户名、姓名、邮箱、购物车和心愿单数量
// @Tags         个人中心
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appuser.ProfileResponse}
// @Router       /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	result, err := h.profileUseCase.Get(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Update 修改姓名
// @Summary      修改个人资料
// @Tags         个人中心
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateProfileRequest true "姓名"
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Router       /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.profileUseCase.UpdateFullName(c.Request.Context(), middleware.MustGetUserID(c), req.FullName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ChangePassword 修改密码,成功后需要重新登录
// @Summary      修改密码
// @Tags         个人中心
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ChangePasswordRequest true "密码"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "当前密码不正确或新密码强度不足"
// @Router       /profile/password [put]
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	err := h.profileUseCase.ChangePassword(c.Request.Context(), middleware.MustGetUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetAddress 收货地址
// @Summary      收货地址
// @Tags         个人中心
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appuser.AddressResponse}
// @Failure      404 {object} response.Response "地址不存在"
// @Router       /profile/address [get]
func (h *ProfileHandler) GetAddress(c *gin.Context) {
	result, err := h.profileUseCase.GetAddress(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SaveAddress 保存收货地址(整体覆盖)
// @Summary      保存收货地址
// @Tags         个人中心
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddressRequest true "地址"
// @Success      200 {object} response.Response{data=appuser.AddressResponse}
// @Router       /profile/address [put]
func (h *ProfileHandler) SaveAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.profileUseCase.SaveAddress(c.Request.Context(), middleware.MustGetUserID(c), address.Fields{
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		Country: req.Country,
		ZipCode: req.ZipCode,
		Phone:   req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteAccount 注销账号
// @Summary      注销账号
// @Description  取消所有已确认订单并回补库存,清空购物车和心愿单,删除地址和账号
// @Tags         个人中心
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /profile [delete]
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	if err := h.deleteUseCase.Execute(c.Request.Context(), middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
