package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"snaproll/backend/internal/dto"
	"snaproll/backend/internal/model"
	"snaproll/backend/internal/repository"
)

// ── 班级模块业务错误 ──

var (
	ErrStudentNotFound  = errors.New("学生不存在")
	ErrNotAStudent      = errors.New("只能将学生账号加入班级")
	ErrAlreadyEnrolled  = errors.New("该学生已在班级名单中")
)

// SectionService 班级与名单业务接口
type SectionService interface {
	Create(ctx context.Context, req *dto.CreateSectionRequest, teacherID string) (*dto.SectionResponse, error)
	GetByID(ctx context.Context, sectionID, teacherID string) (*dto.SectionResponse, error)
	ListMine(ctx context.Context, teacherID string) ([]dto.SectionResponse, error)
	Update(ctx context.Context, sectionID, teacherID string, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error)
	Delete(ctx context.Context, sectionID, teacherID string) error
	// Enroll 按邮箱把学生加入名单。Enrollment.CreatedAt 即该生的入班时刻，
	// 此后成为历史视图"当日是否在班"的权威判据。
	Enroll(ctx context.Context, sectionID, teacherID, studentEmail string) (*dto.RosterEntryResponse, error)
	Unenroll(ctx context.Context, sectionID, teacherID, studentID string) error
	Roster(ctx context.Context, sectionID, teacherID string) ([]dto.RosterEntryResponse, error)
}

type sectionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSectionService 创建 SectionService 实例
func NewSectionService(repo *repository.Repository, logger *zap.Logger) SectionService {
	return &sectionService{repo: repo, logger: logger}
}

func (s *sectionService) owned(ctx context.Context, sectionID, teacherID string) (*model.Section, error) {
	section, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}
	if section.TeacherID != teacherID {
		return nil, ErrNotSectionOwner
	}
	return section, nil
}

func (s *sectionService) Create(ctx context.Context, req *dto.CreateSectionRequest, teacherID string) (*dto.SectionResponse, error) {
	theme := req.Theme
	if theme == "" {
		theme = "default"
	}
	section := &model.Section{
		TeacherID: teacherID,
		Title:     req.Title,
		Theme:     theme,
	}
	if err := s.repo.Section.Create(ctx, section); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}
	return toSectionResponse(section), nil
}

func (s *sectionService) GetByID(ctx context.Context, sectionID, teacherID string) (*dto.SectionResponse, error) {
	section, err := s.owned(ctx, sectionID, teacherID)
	if err != nil {
		return nil, err
	}
	return toSectionResponse(section), nil
}

func (s *sectionService) ListMine(ctx context.Context, teacherID string) ([]dto.SectionResponse, error) {
	sections, err := s.repo.Section.ListByTeacher(ctx, teacherID)
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SectionResponse, len(sections))
	for i := range sections {
		result[i] = *toSectionResponse(&sections[i])
	}
	return result, nil
}

func (s *sectionService) Update(ctx context.Context, sectionID, teacherID string, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error) {
	section, err := s.owned(ctx, sectionID, teacherID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		section.Title = *req.Title
	}
	if req.Theme != nil {
		section.Theme = *req.Theme
	}
	if err := s.repo.Section.Update(ctx, section); err != nil {
		s.logger.Error("更新班级失败", zap.Error(err))
		return nil, err
	}
	return toSectionResponse(section), nil
}

func (s *sectionService) Delete(ctx context.Context, sectionID, teacherID string) error {
	if _, err := s.owned(ctx, sectionID, teacherID); err != nil {
		return err
	}
	return s.repo.Section.Delete(ctx, sectionID)
}

func (s *sectionService) Enroll(ctx context.Context, sectionID, teacherID, studentEmail string) (*dto.RosterEntryResponse, error) {
	if _, err := s.owned(ctx, sectionID, teacherID); err != nil {
		return nil, err
	}

	student, err := s.repo.User.GetByEmail(ctx, NormalizeEmail(studentEmail))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrNotAStudent
	}

	enrollment := &model.Enrollment{
		SectionID: sectionID,
		StudentID: student.UserID,
	}
	if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		s.logger.Error("写入选课关系失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生已加入班级",
		zap.String("section_id", sectionID),
		zap.String("student_id", student.UserID),
	)

	return &dto.RosterEntryResponse{
		StudentID:  student.UserID,
		FirstName:  student.FirstName,
		LastName:   student.LastName,
		Email:      student.Email,
		EnrolledAt: enrollment.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *sectionService) Unenroll(ctx context.Context, sectionID, teacherID, studentID string) error {
	if _, err := s.owned(ctx, sectionID, teacherID); err != nil {
		return err
	}
	return s.repo.Enrollment.Delete(ctx, sectionID, studentID)
}

func (s *sectionService) Roster(ctx context.Context, sectionID, teacherID string) ([]dto.RosterEntryResponse, error) {
	if _, err := s.owned(ctx, sectionID, teacherID); err != nil {
		return nil, err
	}
	enrollments, err := s.repo.Enrollment.ListBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("查询班级名单失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.RosterEntryResponse, 0, len(enrollments))
	for _, e := range enrollments {
		entry := dto.RosterEntryResponse{
			StudentID:  e.StudentID,
			EnrolledAt: e.CreatedAt.Format(time.RFC3339),
		}
		if e.Student != nil {
			entry.FirstName = e.Student.FirstName
			entry.LastName = e.Student.LastName
			entry.Email = e.Student.Email
		}
		result = append(result, entry)
	}
	return result, nil
}

func toSectionResponse(section *model.Section) *dto.SectionResponse {
	return &dto.SectionResponse{
		ID:        section.SectionID,
		TeacherID: section.TeacherID,
		Title:     section.Title,
		Theme:     section.Theme,
		CreatedAt: section.CreatedAt.Format(time.RFC3339),
	}
}
