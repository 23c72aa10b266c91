package model

import "time"

// CodeReservation 签到码占用表 — 对应 code_reservations
//
// 签到码是全系统共享的数字命名空间：任一时刻同一码至多一个未过期持有者。
// 以 code 为主键，通过条件 upsert 原子抢占：只有槽位空闲或已过期才能占用，
// 取代"先扫描再写入"的竞态做法。
type CodeReservation struct {
	Code       string    `gorm:"type:varchar(8);primaryKey" json:"code"`
	ClassDayID string    `gorm:"type:uuid;not null"         json:"class_day_id"`
	ExpiresAt  time.Time `gorm:"not null"                   json:"expires_at"`
}

// TableName 指定表名
func (CodeReservation) TableName() string { return "code_reservations" }
