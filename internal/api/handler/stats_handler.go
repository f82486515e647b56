package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fatymarishu/gatepass/internal/service"
	"github.com/fatymarishu/gatepass/pkg/response"
)

// StatsHandler 管理员看板
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Dashboard 看板统计，每次请求实时计算
// GET /api/v1/stats/dashboard
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsSvc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, stats)
}
