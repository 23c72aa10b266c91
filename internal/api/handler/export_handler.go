package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"snaproll/backend/internal/service"
	"snaproll/backend/pkg/response"
)

// ExportHandler 历史网格导出 HTTP 处理器
type ExportHandler struct {
	historySvc service.HistoryService
	exportSvc  service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(historySvc service.HistoryService, exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{historySvc: historySvc, exportSvc: exportSvc}
}

// ExportCSV 导出班级全历史网格为 CSV
// GET /api/v1/sections/:id/attendance/export.csv
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.historySvc.ExportCSV(c.Request.Context(), c.Param("id"), teacherID, TZOffset(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX 导出班级全历史网格为 Excel
// GET /api/v1/sections/:id/attendance/export.xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRosterXLSX(c.Request.Context(), c.Param("id"), teacherID, TZOffset(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrNotSectionOwner):
		response.Forbidden(c, 12002, err.Error())
	case errors.Is(err, service.ErrExportNoDays):
		response.NotFound(c, 14001, err.Error())
	default:
		response.InternalError(c)
	}
}
