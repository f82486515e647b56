package dto

// DashboardStatsResponse 管理员看板统计（每次请求实时计算）
type DashboardStatsResponse struct {
	TotalWarehouses int `json:"totalWarehouses"`
	PendingRequests int `json:"pendingRequests"`
	ApprovedToday   int `json:"approvedToday"`
	ActiveUsers     int `json:"activeUsers"`
}
