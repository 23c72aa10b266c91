package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User             UserRepository
	Section          SectionRepository
	Enrollment       EnrollmentRepository
	ClassDay         ClassDayRepository
	AttendanceRecord AttendanceRecordRepository
	ManualStatus     ManualStatusRepository
	CodeReservation  CodeReservationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:             NewUserRepo(db),
		Section:          NewSectionRepo(db),
		Enrollment:       NewEnrollmentRepo(db),
		ClassDay:         NewClassDayRepo(db),
		AttendanceRecord: NewAttendanceRecordRepo(db),
		ManualStatus:     NewManualStatusRepo(db),
		CodeReservation:  NewCodeReservationRepo(db),
	}
}
