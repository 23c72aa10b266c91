package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"snaproll/backend/internal/model"
)

// ManualStatusRepository 手动更正数据访问接口
type ManualStatusRepository interface {
	// Upsert 按 (class_day_id, student_id) 落库；已存在时用新状态、新署名、新时间整体替换
	Upsert(ctx context.Context, change *model.ManualStatusChange) error
	Get(ctx context.Context, classDayID, studentID string) (*model.ManualStatusChange, error)
	ListByClassDayIDs(ctx context.Context, classDayIDs []string) ([]model.ManualStatusChange, error)
	ListByStudentAndClassDayIDs(ctx context.Context, studentID string, classDayIDs []string) ([]model.ManualStatusChange, error)
}

// manualStatusRepo ManualStatusRepository 的 GORM 实现
type manualStatusRepo struct {
	db *gorm.DB
}

// NewManualStatusRepo 创建 ManualStatusRepository 实例
func NewManualStatusRepo(db *gorm.DB) ManualStatusRepository {
	return &manualStatusRepo{db: db}
}

func (r *manualStatusRepo) Upsert(ctx context.Context, change *model.ManualStatusChange) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_day_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "teacher_id", "set_at"}),
		}).
		Create(change).Error
}

func (r *manualStatusRepo) Get(ctx context.Context, classDayID, studentID string) (*model.ManualStatusChange, error) {
	var change model.ManualStatusChange
	err := r.db.WithContext(ctx).
		Where("class_day_id = ? AND student_id = ?", classDayID, studentID).
		First(&change).Error
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func (r *manualStatusRepo) ListByClassDayIDs(ctx context.Context, classDayIDs []string) ([]model.ManualStatusChange, error) {
	if len(classDayIDs) == 0 {
		return nil, nil
	}
	var changes []model.ManualStatusChange
	err := r.db.WithContext(ctx).
		Where("class_day_id IN ?", classDayIDs).
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (r *manualStatusRepo) ListByStudentAndClassDayIDs(ctx context.Context, studentID string, classDayIDs []string) ([]model.ManualStatusChange, error) {
	if len(classDayIDs) == 0 {
		return nil, nil
	}
	var changes []model.ManualStatusChange
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND class_day_id IN ?", studentID, classDayIDs).
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}
