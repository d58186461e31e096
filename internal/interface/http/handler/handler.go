// Package handler HTTP处理器
//
// Handler只做三件事:绑定参数、调用应用层用例、写响应。
// 业务错误统一交给response.Error按错误码族映射HTTP状态码。
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookrec/pkg/errors"
	"github.com/xiebiao/bookrec/pkg/response"
)

// bindError 参数绑定或binding tag校验失败
func bindError(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
}

// uintParam 解析路径参数,失败时已写入响应
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+name+"必须是正整数")
		return 0, false
	}
	return uint(v), true
}
