package handler

import "snaproll/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Section    *SectionHandler
	Attendance *AttendanceHandler
	History    *HistoryHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Section:    NewSectionHandler(svc.Section, svc.Calendar),
		Attendance: NewAttendanceHandler(svc.Attendance, svc.ManualStatus),
		History:    NewHistoryHandler(svc.History),
		Export:     NewExportHandler(svc.History, svc.Export),
	}
}
