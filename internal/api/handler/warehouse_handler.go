package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/service"
	"github.com/fatymarishu/gatepass/pkg/response"
)

// WarehouseHandler 仓库模块 HTTP 处理器
type WarehouseHandler struct {
	warehouseSvc service.WarehouseService
}

// NewWarehouseHandler 创建 WarehouseHandler
func NewWarehouseHandler(warehouseSvc service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseSvc: warehouseSvc}
}

// ListWarehouses 仓库列表（公开申请表单同样使用）
// GET /api/v1/warehouse/getall
func (h *WarehouseHandler) ListWarehouses(c *gin.Context) {
	list, err := h.warehouseSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, list)
}

// CreateWarehouse 创建仓库
// POST /api/v1/warehouse/create
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	w, err := h.warehouseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, w)
}

// UpdateWarehouse 更新仓库
// PUT /api/v1/warehouse/:id
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	var req dto.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	w, err := h.warehouseSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, w)
}

// DeleteWarehouse 删除仓库，级联删除时间段与审批步骤
// DELETE /api/v1/warehouse/:id
func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	if err := h.warehouseSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, nil)
}
