package dto

// ── 仓库模块 DTO ──

// CreateWarehouseRequest 创建仓库请求
type CreateWarehouseRequest struct {
	Name     string `json:"name"     binding:"required,max=100"`
	Location string `json:"location" binding:"required,max=200"`
}

// UpdateWarehouseRequest 更新仓库请求
type UpdateWarehouseRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=100"`
	Location *string `json:"location" binding:"omitempty,min=1,max=200"`
}

// WarehouseResponse 仓库信息响应
type WarehouseResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
