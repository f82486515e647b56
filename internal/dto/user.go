package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户
type CreateUserRequest struct {
	Name        string  `json:"name"        binding:"required,min=2,max=100"`
	Email       string  `json:"email"       binding:"required,email"`
	Phone       string  `json:"phone"       binding:"max=30"`
	Password    string  `json:"password"    binding:"required,min=8,max=64"`
	Designation string  `json:"designation" binding:"max=100"`
	Role        string  `json:"role"        binding:"required"`
	WarehouseID *string `json:"warehouseId" binding:"omitempty,uuid"`
	IsActive    *bool   `json:"isActive"`
}

// UpdateUserRequest 更新用户（部分更新）
type UpdateUserRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Email       *string `json:"email"       binding:"omitempty,email"`
	Phone       *string `json:"phone"       binding:"omitempty,max=30"`
	Password    *string `json:"password"    binding:"omitempty,min=8,max=64"`
	Designation *string `json:"designation" binding:"omitempty,max=100"`
	Role        *string `json:"role"`
	WarehouseID *string `json:"warehouseId"` // 空串表示解除仓库归属
	IsActive    *bool   `json:"isActive"`
}

// UserResponse 用户信息（脱敏）
type UserResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Designation string  `json:"designation"`
	Role        string  `json:"role"`
	WarehouseID *string `json:"warehouseId,omitempty"`
	IsActive    bool    `json:"isActive"`
	CreatedAt   string  `json:"createdAt"`
}
