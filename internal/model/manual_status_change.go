package model

import "time"

// ManualStatusChange 教师手动更正表 — 对应 manual_status_changes
//
// 按 (class_day_id, student_id) 唯一，可重复 upsert（新值连同 SetAt 一起替换旧值）。
// 在有效状态合成中优先级最高。
type ManualStatusChange struct {
	ManualStatusChangeID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"manual_status_change_id"`
	ClassDayID           string    `gorm:"type:uuid;not null;uniqueIndex:uq_manual_status_day_student" json:"class_day_id"`
	StudentID            string    `gorm:"type:uuid;not null;uniqueIndex:uq_manual_status_day_student" json:"student_id"`
	Status               string    `gorm:"type:varchar(20);not null"                               json:"status"`
	TeacherID            string    `gorm:"type:uuid;not null"                                      json:"teacher_id"`
	SetAt                time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                      json:"set_at"`

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (ManualStatusChange) TableName() string { return "manual_status_changes" }
