package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求
// Role 创建后不可变；Email 服务端统一小写规范化
type RegisterRequest struct {
	Email     string `json:"email"      binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name"  binding:"required,min=1,max=100"`
	Password  string `json:"password"   binding:"required,min=8,max=64"`
	Role      string `json:"role"       binding:"required,oneof=TEACHER STUDENT"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse 登录/刷新成功响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}
