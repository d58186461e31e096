package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookrec/internal/application/user"
	"github.com/xiebiao/bookrec/internal/interface/http/dto"
	"github.com/xiebiao/bookrec/internal/interface/http/middleware"
	"github.com/xiebiao/bookrec/pkg/response"
)

// AdminUserHandler 用户管理
type AdminUserHandler struct {
	users *appuser.AdminUserUseCase
}

// NewAdminUserHandler 创建用户管理处理器
func NewAdminUserHandler(users *appuser.AdminUserUseCase) *AdminUserHandler {
	return &AdminUserHandler{users: users}
}

// List 用户列表
// @Summary      用户列表
// @Tags         管理-用户
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appuser.UserInfo}}
// @Router       /admin/users [get]
func (h *AdminUserHandler) List(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	req.Normalize()

	list, total, err := h.users.List(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, list, total, req.Page, req.PageSize)
}

// Delete 删除用户,流程与本人注销相同
// @Summary      删除用户
// @Tags         管理-用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /admin/users/{id} [delete]
func (h *AdminUserHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), middleware.MustGetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
