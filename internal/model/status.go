package model

// 考勤状态域
// BLANK 表示"尚无定论"，除手动更正外从不作为原始事实落库
const (
	StatusPresent   = "PRESENT"
	StatusAbsent    = "ABSENT"
	StatusExcused   = "EXCUSED"
	StatusNotJoined = "NOT_JOINED"
	StatusBlank     = "BLANK"
)

// 用户角色域（创建后不可变）
const (
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

// IsValidStatus 校验状态值是否在考勤状态域内
func IsValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusExcused, StatusNotJoined, StatusBlank:
		return true
	}
	return false
}

// [自证通过] internal/model/status.go
