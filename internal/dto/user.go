package dto

// ── 用户模块 DTO ──

// UserResponse 用户信息响应
type UserResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
