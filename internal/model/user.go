package model

// User 用户表 — 对应 users
// Email 写入前统一小写规范化；Role 创建后不可变
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Role         string `gorm:"type:varchar(20);not null"                      json:"role"` // TEACHER | STUDENT
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	FirstName    string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName     string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DisplayName 拼接展示用姓名（手动更正署名使用）
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
