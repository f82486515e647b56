package dto

// ── 时间段模块 DTO ──

// TimeSlotRequest 创建/更新时间段请求
// 字段完整性由 Service 统一校验，以便一次列出所有错误字段
type TimeSlotRequest struct {
	Name string `json:"name"`
	From string `json:"from"` // "09:00"
	To   string `json:"to"`   // "11:00"
}

// TimeSlotResponse 时间段信息响应
type TimeSlotResponse struct {
	ID          string `json:"id"`
	WarehouseID string `json:"warehouseId"`
	Name        string `json:"name"`
	From        string `json:"from"`
	To          string `json:"to"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}
