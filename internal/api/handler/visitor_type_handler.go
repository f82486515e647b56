package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/service"
	"github.com/fatymarishu/gatepass/pkg/response"
)

// VisitorTypeHandler 访客类型 HTTP 处理器
type VisitorTypeHandler struct {
	visitorTypeSvc service.VisitorTypeService
}

// NewVisitorTypeHandler 创建 VisitorTypeHandler
func NewVisitorTypeHandler(visitorTypeSvc service.VisitorTypeService) *VisitorTypeHandler {
	return &VisitorTypeHandler{visitorTypeSvc: visitorTypeSvc}
}

// ListActive 启用中的访客类型（公开）
// GET /api/v1/visitortypes/getall
func (h *VisitorTypeHandler) ListActive(c *gin.Context) {
	list, err := h.visitorTypeSvc.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, list)
}

// ListDisabled 已停用的访客类型
// GET /api/v1/visitortypes/getall/disabled
func (h *VisitorTypeHandler) ListDisabled(c *gin.Context) {
	list, err := h.visitorTypeSvc.ListDisabled(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, list)
}

// GetVisitorType 访客类型详情
// GET /api/v1/visitortypes/:id
func (h *VisitorTypeHandler) GetVisitorType(c *gin.Context) {
	vt, err := h.visitorTypeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, vt)
}

// CreateVisitorType 创建访客类型
// POST /api/v1/visitortypes/create
func (h *VisitorTypeHandler) CreateVisitorType(c *gin.Context) {
	var req dto.CreateVisitorTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	vt, err := h.visitorTypeSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, vt)
}

// UpdateVisitorType 更新访客类型
// PUT /api/v1/visitortypes/:id
func (h *VisitorTypeHandler) UpdateVisitorType(c *gin.Context) {
	var req dto.UpdateVisitorTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	vt, err := h.visitorTypeSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, vt)
}

// Disable 停用访客类型
// PUT /api/v1/visitortypes/:id/disable
func (h *VisitorTypeHandler) Disable(c *gin.Context) {
	h.setActive(c, false)
}

// Enable 恢复访客类型
// PUT /api/v1/visitortypes/:id/enable
func (h *VisitorTypeHandler) Enable(c *gin.Context) {
	h.setActive(c, true)
}

func (h *VisitorTypeHandler) setActive(c *gin.Context, active bool) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	vt, err := h.visitorTypeSvc.SetActive(c.Request.Context(), c.Param("id"), active, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, vt)
}
