package model

import "time"

// Enrollment 选课关系表 — 对应 enrollments
// CreatedAt 是"学生在第 D 天是否已属于本班"的权威判据：
// 早于入班日的上课日在该生的视图中永远是 BLANK，不派生缺勤
type Enrollment struct {
	EnrollmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"enrollment_id"`
	SectionID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_section_student" json:"section_id"`
	StudentID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_section_student" json:"student_id"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                      json:"created_at"`

	// 关联
	Student *User    `gorm:"foreignKey:StudentID;references:UserID"    json:"student,omitempty"`
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
