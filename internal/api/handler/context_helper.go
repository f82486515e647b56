package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/service"
	"github.com/fatymarishu/gatepass/pkg/response"
)

// 上下文键，由 middleware.JWTAuth 写入
const (
	CtxUserID      = "user_id"
	CtxRole        = "role"
	CtxWarehouseID = "warehouse_id"
	CtxTokenID     = "token_id"
	CtxTokenExpiry = "token_expiry"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetActor 提取当前操作人（用户、角色、仓库归属）
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	role, valid := model.ParseRole(c.GetString(CtxRole))
	if !valid {
		response.Unauthorized(c, 10002, "未认证")
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:      userID,
		Role:        role,
		WarehouseID: c.GetString(CtxWarehouseID),
	}, true
}

// OptionalUserID 公开接口上可选的登录用户；未登录返回空串
func OptionalUserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

// tokenInfo 当前 Token 的 JTI 与过期时间，供登出使用
func tokenInfo(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString(CtxTokenID)
	exp := c.GetTime(CtxTokenExpiry)
	if jti == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	return jti, exp, true
}
