package dto

// ── 前台模块 DTO ──

// UpdateVisitStatusRequest 前台登记，字段均可选（部分更新）
// ArrivedAt / CheckedOutAt 接受 "HH:MM"（按申请日期补全）或 RFC3339；空串表示清除
type UpdateVisitStatusRequest struct {
	VisitStatus  *string `json:"visitStatus"`
	ArrivedAt    *string `json:"arrivedAt"`
	CheckedOutAt *string `json:"checkedOutAt"`
	Punctuality  *string `json:"punctuality"`
}

// ReceptionListRequest 前台列表查询
type ReceptionListRequest struct {
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
}

// ReceptionStatsResponse 前台当日统计
type ReceptionStatsResponse struct {
	TodayVisitors  int `json:"todayVisitors"`
	VisitedCount   int `json:"visitedCount"`
	PendingCount   int `json:"pendingCount"`
	NoShowCount    int `json:"noShowCount"`
	ActiveSessions int `json:"activeSessions"`
}
