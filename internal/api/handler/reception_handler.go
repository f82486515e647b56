package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/service"
	"github.com/fatymarishu/gatepass/pkg/response"
)

// ReceptionHandler 前台登记 HTTP 处理器
type ReceptionHandler struct {
	receptionSvc service.ReceptionService
}

// NewReceptionHandler 创建 ReceptionHandler
func NewReceptionHandler(receptionSvc service.ReceptionService) *ReceptionHandler {
	return &ReceptionHandler{receptionSvc: receptionSvc}
}

// ListToday 当日访客
// GET /api/v1/visitors/receptionist/today?warehouse_id=
func (h *ReceptionHandler) ListToday(c *gin.Context) {
	var req dto.ReceptionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.receptionSvc.ListToday(c.Request.Context(), req.WarehouseID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, list)
}

// ListAll 全部访客记录
// GET /api/v1/visitors/receptionist/all?warehouse_id=
func (h *ReceptionHandler) ListAll(c *gin.Context) {
	var req dto.ReceptionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.receptionSvc.ListAll(c.Request.Context(), req.WarehouseID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, list)
}

// TodayStats 前台看板统计
// GET /api/v1/visitors/receptionist/stats?warehouse_id=
func (h *ReceptionHandler) TodayStats(c *gin.Context) {
	var req dto.ReceptionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	stats, err := h.receptionSvc.TodayStats(c.Request.Context(), req.WarehouseID, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, stats)
}

// RecordStatus 登记到访状态、到达/离开时间
// PUT /api/v1/visitors/receptionist/update/:id
func (h *ReceptionHandler) RecordStatus(c *gin.Context) {
	var req dto.UpdateVisitStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.receptionSvc.RecordStatus(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, result)
}
