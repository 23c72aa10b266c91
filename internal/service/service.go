package service

import (
	"go.uber.org/zap"

	"snaproll/backend/config"
	"snaproll/backend/internal/repository"
	"snaproll/backend/pkg/jwt"
	"snaproll/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Section      SectionService
	Attendance   AttendanceService
	ManualStatus ManualStatusService
	History      HistoryService
	Export       ExportService
	Calendar     CalendarService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Section:      NewSectionService(repo, logger),
		Attendance:   NewAttendanceService(cfg, repo, logger),
		ManualStatus: NewManualStatusService(repo, logger),
		History:      NewHistoryService(cfg, repo, logger),
		Export:       NewExportService(repo, logger),
		Calendar:     NewCalendarService(repo, logger),
	}
}
