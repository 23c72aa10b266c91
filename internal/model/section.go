package model

// Section 班级表 — 对应 sections
// 每个班级由唯一一位教师拥有
type Section struct {
	SectionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"section_id"`
	TeacherID string `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	Title     string `gorm:"type:varchar(200);not null"                     json:"title"`
	Theme     string `gorm:"type:varchar(50);not null;default:'default'"    json:"theme"`
	BaseModel

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Section) TableName() string { return "sections" }
