package dto

// ── 班级模块 DTO ──

// CreateSectionRequest 创建班级请求
type CreateSectionRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
	Theme string `json:"theme" binding:"omitempty,max=50"`
}

// UpdateSectionRequest 更新班级请求
type UpdateSectionRequest struct {
	Title *string `json:"title" binding:"omitempty,min=1,max=200"`
	Theme *string `json:"theme" binding:"omitempty,max=50"`
}

// SectionResponse 班级信息响应
type SectionResponse struct {
	ID        string `json:"id"`
	TeacherID string `json:"teacher_id"`
	Title     string `json:"title"`
	Theme     string `json:"theme"`
	CreatedAt string `json:"created_at"`
}

// EnrollRequest 按邮箱加入学生请求
type EnrollRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RosterEntryResponse 花名册条目响应
type RosterEntryResponse struct {
	StudentID  string `json:"student_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	EnrolledAt string `json:"enrolled_at"`
}

// CalendarImportRequest 从 iCalendar 导入上课日请求
// URL 与 ICS 正文二选一：URL 为空时读取请求体原文
type CalendarImportRequest struct {
	URL string `json:"url" binding:"omitempty,url"`
}

// CalendarImportResponse 导入结果响应
type CalendarImportResponse struct {
	Created int `json:"created"` // 新建的上课日数
	Skipped int `json:"skipped"` // 已存在而跳过的事件数
}
