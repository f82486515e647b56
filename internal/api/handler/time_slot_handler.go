package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fatymarishu/gatepass/internal/dto"
	"github.com/fatymarishu/gatepass/internal/service"
	"github.com/fatymarishu/gatepass/pkg/response"
)

// TimeSlotHandler 时间段模块 HTTP 处理器
type TimeSlotHandler struct {
	timeSlotSvc service.TimeSlotService
}

// NewTimeSlotHandler 创建 TimeSlotHandler
func NewTimeSlotHandler(timeSlotSvc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{timeSlotSvc: timeSlotSvc}
}

// ListTimeSlots 仓库的时间段列表，按开始时间升序
// GET /api/v1/warehouse-time-slots/:warehouseId
func (h *TimeSlotHandler) ListTimeSlots(c *gin.Context) {
	slots, err := h.timeSlotSvc.List(c.Request.Context(), c.Param("warehouseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, slots)
}

// CreateTimeSlot 创建时间段
// POST /api/v1/warehouse-time-slots/warehouse/:warehouseId
func (h *TimeSlotHandler) CreateTimeSlot(c *gin.Context) {
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.timeSlotSvc.Create(c.Request.Context(), c.Param("warehouseId"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, slot)
}

// UpdateTimeSlot 更新时间段
// PUT /api/v1/warehouse-time-slots/:id
func (h *TimeSlotHandler) UpdateTimeSlot(c *gin.Context) {
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.timeSlotSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteTimeSlot 删除时间段；已有申请保留时间段快照
// DELETE /api/v1/warehouse-time-slots/:id
func (h *TimeSlotHandler) DeleteTimeSlot(c *gin.Context) {
	if err := h.timeSlotSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}
