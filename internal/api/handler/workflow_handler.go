package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/service"
	"github.com/fatymarishu/gatepass/pkg/response"
)

// WorkflowHandler 审批流程配置 HTTP 处理器
type WorkflowHandler struct {
	workflowSvc service.WorkflowService
}

// NewWorkflowHandler 创建 WorkflowHandler
func NewWorkflowHandler(workflowSvc service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowSvc: workflowSvc}
}

// ListWorkflows 仓库的审批链，按 visitorTypeId 分组
// GET /api/v1/warehouse-workflow/:warehouseId
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	workflows, err := h.workflowSvc.List(c.Request.Context(), c.Param("warehouseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, workflows)
}

// AddStep 新增审批步骤
// POST /api/v1/warehouse-workflow
func (h *WorkflowHandler) AddStep(c *gin.Context) {
	var req dto.CreateWorkflowStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	step, err := h.workflowSvc.AddStep(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, step)
}

// UpdateStep 修改审批步骤
// PUT /api/v1/warehouse-workflow/:id
func (h *WorkflowHandler) UpdateStep(c *gin.Context) {
	var req dto.UpdateWorkflowStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	step, err := h.workflowSvc.UpdateStep(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, step)
}

// DeleteStep 删除审批步骤，其余步骤号不重排
// DELETE /api/v1/warehouse-workflow/:id
func (h *WorkflowHandler) DeleteStep(c *gin.Context) {
	if err := h.workflowSvc.DeleteStep(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, nil)
}
