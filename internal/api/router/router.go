package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatymarishu/gatepass/config"
	"github.com/fatymarishu/gatepass/internal/api/handler"
	"github.com/fatymarishu/gatepass/internal/api/middleware"
	"github.com/fatymarishu/gatepass/internal/model"
	"github.com/fatymarishu/gatepass/pkg/jwt"
	"github.com/fatymarishu/gatepass/pkg/redis"
)

const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：Token 黑名单与登录限流降级为不生效
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	requireCap := middleware.RequireCapability

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 公开接口：登录、访客表单所需的主数据、提交与进度查询
		v1.POST("/auth/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, time.Minute, logger), h.Auth.Login)
		v1.GET("/warehouse/getall", h.Warehouse.ListWarehouses)
		v1.GET("/warehouse-time-slots/:warehouseId", h.TimeSlot.ListTimeSlots)
		v1.GET("/visitortypes/getall", h.VisitorType.ListActive)

		public := v1.Group("/visitors")
		{
			public.POST("/create", middleware.OptionalAuth(jwtMgr, rdb, logger), h.VisitorRequest.CreateRequest)
			public.GET("/track/:code", h.VisitorRequest.Track)
			public.GET("/track/:code/ics", h.VisitorRequest.DownloadInvite)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 仓库
			warehouses := authorized.Group("/warehouse", requireCap(model.CapManageMasterData))
			{
				warehouses.POST("/create", h.Warehouse.CreateWarehouse)
				warehouses.PUT("/:id", h.Warehouse.UpdateWarehouse)
				warehouses.DELETE("/:id", h.Warehouse.DeleteWarehouse)
			}

			// 时间段
			timeSlots := authorized.Group("/warehouse-time-slots", requireCap(model.CapManageMasterData))
			{
				timeSlots.POST("/warehouse/:warehouseId", h.TimeSlot.CreateTimeSlot)
				timeSlots.PUT("/:id", h.TimeSlot.UpdateTimeSlot)
				timeSlots.DELETE("/:id", h.TimeSlot.DeleteTimeSlot)
			}

			// 审批流程
			workflows := authorized.Group("/warehouse-workflow", requireCap(model.CapManageWorkflows))
			{
				workflows.GET("/:warehouseId", h.Workflow.ListWorkflows)
				workflows.POST("", h.Workflow.AddStep)
				workflows.PUT("/:id", h.Workflow.UpdateStep)
				workflows.DELETE("/:id", h.Workflow.DeleteStep)
			}

			// 访客类型
			visitorTypes := authorized.Group("/visitortypes", requireCap(model.CapManageMasterData))
			{
				visitorTypes.GET("/getall/disabled", h.VisitorType.ListDisabled)
				visitorTypes.GET("/:id", h.VisitorType.GetVisitorType)
				visitorTypes.POST("/create", h.VisitorType.CreateVisitorType)
				visitorTypes.PUT("/:id", h.VisitorType.UpdateVisitorType)
				visitorTypes.PUT("/:id/disable", h.VisitorType.Disable)
				visitorTypes.PUT("/:id/enable", h.VisitorType.Enable)
			}

			// 用户
			users := authorized.Group("/users", requireCap(model.CapManageUsers))
			{
				users.GET("/getall", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("/create", h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
			}

			// 访客申请
			visitors := authorized.Group("/visitors")
			{
				visitors.GET("/getall", requireCap(model.CapViewAllRequests), h.VisitorRequest.ListRequests)
				visitors.GET("/export", requireCap(model.CapExportRequests), h.Export.ExportRequests)
				visitors.GET("/:id", requireCap(model.CapViewAllRequests), h.VisitorRequest.GetRequest)
				visitors.PUT("/:id", requireCap(model.CapEditRequests), h.VisitorRequest.UpdateRequest)
				visitors.PUT("/:id/approve", requireCap(model.CapDecideRequests), h.VisitorRequest.Approve)
				visitors.PUT("/:id/reject", requireCap(model.CapDecideRequests), h.VisitorRequest.Reject)

				approver := visitors.Group("/user/:id", middleware.RequireAnyCapability(model.CapViewAssignedRequests, model.CapViewAllRequests))
				{
					approver.GET("", h.VisitorRequest.ListForApprover(""))
					approver.GET("/pending", h.VisitorRequest.ListForApprover(model.StatusPending))
					approver.GET("/approved", h.VisitorRequest.ListForApprover(model.StatusApproved))
					approver.GET("/rejected", h.VisitorRequest.ListForApprover(model.StatusRejected))
				}

				// 前台登记
				reception := visitors.Group("/receptionist")
				{
					reception.GET("/today", requireCap(model.CapViewReception), h.Reception.ListToday)
					reception.GET("/all", requireCap(model.CapViewReception), h.Reception.ListAll)
					reception.GET("/stats", requireCap(model.CapViewReception), h.Reception.TodayStats)
					reception.PUT("/update/:id", requireCap(model.CapRecordVisits), h.Reception.RecordStatus)
				}
			}

			// 统计
			authorized.GET("/stats/dashboard", requireCap(model.CapViewStats), h.Stats.Dashboard)
		}
	}

	return r
}
