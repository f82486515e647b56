package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/internal/service"
	"github.com/fatymarishu/gatepass/pkg/response"
)

// VisitorRequestHandler 访客申请 HTTP 处理器
type VisitorRequestHandler struct {
	requestSvc service.VisitorRequestService
}

// NewVisitorRequestHandler 创建 VisitorRequestHandler
func NewVisitorRequestHandler(requestSvc service.VisitorRequestService) *VisitorRequestHandler {
	return &VisitorRequestHandler{requestSvc: requestSvc}
}

// ── 公开接口 ──

// CreateRequest 提交访客申请
// POST /api/v1/visitors/create
// 未登录为公开表单，登录后为后台代填，随行人员上限不同
func (h *VisitorRequestHandler) CreateRequest(c *gin.Context) {
	var form dto.VisitorRequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.requestSvc.Create(c.Request.Context(), &form, OptionalUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// Track 按追踪码查询进度
// GET /api/v1/visitors/track/:code
func (h *VisitorRequestHandler) Track(c *gin.Context) {
	result, err := h.requestSvc.Track(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// DownloadInvite 已通过申请的日历邀请
// GET /api/v1/visitors/track/:code/ics
func (h *VisitorRequestHandler) DownloadInvite(c *gin.Context) {
	code := c.Param("code")
	body, err := h.requestSvc.CalendarInvite(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape("gatepass_"+code+".ics"))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// ── 管理员 ──

// ListRequests 全部申请，支持 ?search=&status=&date= 组合筛选
// GET /api/v1/visitors/getall
func (h *VisitorRequestHandler) ListRequests(c *gin.Context) {
	var filter dto.VisitorRequestFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.requestSvc.List(c.Request.Context(), &filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, list)
}

// GetRequest 申请详情
// GET /api/v1/visitors/:id
func (h *VisitorRequestHandler) GetRequest(c *gin.Context) {
	result, err := h.requestSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateRequest 修改待审批的申请
// PUT /api/v1/visitors/:id
func (h *VisitorRequestHandler) UpdateRequest(c *gin.Context) {
	var form dto.VisitorRequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.Update(c.Request.Context(), c.Param("id"), &form, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// ── 审批人 ──

// Approve 审批通过当前步骤
// PUT /api/v1/visitors/:id/approve
func (h *VisitorRequestHandler) Approve(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.Approve(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// Reject 驳回申请
// PUT /api/v1/visitors/:id/reject
func (h *VisitorRequestHandler) Reject(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.Reject(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}

// ListForApprover 审批人名下的申请
// GET /api/v1/visitors/user/:id
// GET /api/v1/visitors/user/:id/pending | approved | rejected
func (h *VisitorRequestHandler) ListForApprover(status model.RequestStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := MustGetActor(c)
		if !ok {
			return
		}

		approverID := c.Param("id")
		if approverID != actor.UserID && !actor.Role.Can(model.CapViewAllRequests) {
			response.Forbidden(c, codeForbidden, "只能查看自己名下的申请")
			return
		}

		list, err := h.requestSvc.ListForApprover(c.Request.Context(), approverID, status)
		if err != nil {
			respondError(c, err)
			return
		}
		response.List(c, list)
	}
}
