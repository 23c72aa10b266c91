package repository

import (
	"context"

	"gorm.io/gorm"

	"snaproll/backend/internal/model"
)

// EnrollmentRepository 选课关系数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	Get(ctx context.Context, sectionID, studentID string) (*model.Enrollment, error)
	ListBySection(ctx context.Context, sectionID string) ([]model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	CountBySection(ctx context.Context, sectionID string) (int64, error)
	Delete(ctx context.Context, sectionID, studentID string) error
}

// enrollmentRepo EnrollmentRepository 的 GORM 实现
type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) Get(ctx context.Context, sectionID, studentID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("section_id = ? AND student_id = ?", sectionID, studentID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListBySection 列出班级全部选课关系，按学生姓氏稳定排序（花名册视图的行序）
func (r *enrollmentRepo) ListBySection(ctx context.Context, sectionID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Joins("JOIN users ON users.user_id = enrollments.student_id").
		Where("enrollments.section_id = ?", sectionID).
		Order("users.last_name, users.first_name").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Section").
		Where("student_id = ?", studentID).
		Order("created_at").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) CountBySection(ctx context.Context, sectionID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("section_id = ?", sectionID).
		Count(&total).Error
	return total, err
}

func (r *enrollmentRepo) Delete(ctx context.Context, sectionID, studentID string) error {
	return r.db.WithContext(ctx).
		Where("section_id = ? AND student_id = ?", sectionID, studentID).
		Delete(&model.Enrollment{}).Error
}
