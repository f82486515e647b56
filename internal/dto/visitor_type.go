package dto

// ── 访客类型模块 DTO ──

// CreateVisitorTypeRequest 创建访客类型
type CreateVisitorTypeRequest struct {
	Name        string `json:"name"        binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

// UpdateVisitorTypeRequest 更新访客类型
type UpdateVisitorTypeRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// VisitorTypeResponse 访客类型信息
type VisitorTypeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	CreatedAt   string `json:"createdAt"`
}
