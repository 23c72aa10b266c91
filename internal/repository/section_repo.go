package repository

import (
	"context"

	"gorm.io/gorm"

	"snaproll/backend/internal/model"
)

// SectionRepository 班级数据访问接口
type SectionRepository interface {
	Create(ctx context.Context, section *model.Section) error
	GetByID(ctx context.Context, id string) (*model.Section, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Section, error)
	Update(ctx context.Context, section *model.Section) error
	Delete(ctx context.Context, id string) error
}

// sectionRepo SectionRepository 的 GORM 实现
type sectionRepo struct {
	db *gorm.DB
}

// NewSectionRepo 创建 SectionRepository 实例
func NewSectionRepo(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

func (r *sectionRepo) Create(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *sectionRepo) GetByID(ctx context.Context, id string) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Where("section_id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Section, error) {
	var sections []model.Section
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *sectionRepo) Update(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Save(section).Error
}

func (r *sectionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("section_id = ?", id).
		Delete(&model.Section{}).Error
}
