package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stratushr/stratus-backend/internal/config"
	"github.com/stratushr/stratus-backend/internal/handler"
	"github.com/stratushr/stratus-backend/internal/middleware"
	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/response"
	"github.com/stratushr/stratus-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Portal       *handler.PortalHandler
	WS           *handler.WSHandler
	Leave        *handler.LeaveHandler
	Announcement *handler.AnnouncementHandler
	Assistant    *handler.AssistantHandler
	Exam         *handler.ExamHandler
	Question     *handler.QuestionHandler
	EmployeeMgmt *handler.EmployeeManagementHandler
	Department   *handler.DepartmentHandler
	AdminUser    *handler.AdminUserHandler
	AdminRole    *handler.AdminRoleHandler
	Report       *handler.ReportHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/employee/login", handlers.Auth.EmployeeLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)

		// Authenticated profile routes
		auth.POST("/employee/logout", middleware.RequireEmployeeJWT(authService), handlers.Auth.EmployeeLogout)
		auth.GET("/employee/me", middleware.RequireEmployeeJWT(authService), handlers.Auth.GetEmployeeProfile)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Employee Group (JWT + Single Device) ───────────────────────
	employeeAPI := router.Group("/api/v1/employee")
	employeeAPI.Use(
		middleware.RequireEmployeeJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		employeeAPI.GET("/lobby", handlers.Portal.GetLobby)
		employeeAPI.POST("/exams/:exam_id/start", handlers.Portal.StartExam)
		employeeAPI.GET("/exams/:exam_id/paper", handlers.Portal.GetExamPaper)
		employeeAPI.GET("/exams/:exam_id/state", handlers.Portal.GetExamState)

		employeeAPI.POST("/leaves", handlers.Leave.SubmitLeave)
		employeeAPI.GET("/leaves", handlers.Leave.ListMyLeaves)
		employeeAPI.GET("/leaves/balances", handlers.Leave.GetLeaveBalances)

		employeeAPI.GET("/announcements", handlers.Announcement.ListAnnouncements)
		employeeAPI.GET("/announcements/:id", handlers.Announcement.GetAnnouncement)

		employeeAPI.POST("/assistant/ask", handlers.Assistant.Ask)
	}

	// ─── 3. WebSocket Group (Employee WS Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireEmployeeWSAuth(authService))
	{
		ws.GET("/employee/exams/:exam_id/stream", handlers.WS.ExamStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Department management
		adminAPI.GET("/departments",
			middleware.RequirePermission(string(model.PermissionEmployeesRead)),
			handlers.Department.ListDepartments,
		)
		adminAPI.POST("/departments",
			middleware.RequirePermission(string(model.PermissionEmployeesWrite)),
			handlers.Department.CreateDepartment,
		)
		adminAPI.DELETE("/departments/:id",
			middleware.RequirePermission(string(model.PermissionEmployeesWrite)),
			handlers.Department.DeleteDepartment,
		)

		// Employee management
		adminAPI.GET("/employees",
			middleware.RequirePermission(string(model.PermissionEmployeesRead)),
			handlers.EmployeeMgmt.ListEmployees,
		)
		adminAPI.GET("/employees/:id",
			middleware.RequirePermission(string(model.PermissionEmployeesRead)),
			handlers.EmployeeMgmt.GetEmployee,
		)
		adminAPI.POST("/employees",
			middleware.RequirePermission(string(model.PermissionEmployeesWrite)),
			handlers.EmployeeMgmt.CreateEmployee,
		)
		adminAPI.PUT("/employees/:id",
			middleware.RequirePermission(string(model.PermissionEmployeesWrite)),
			handlers.EmployeeMgmt.UpdateEmployee,
		)
		adminAPI.DELETE("/employees/:id",
			middleware.RequirePermission(string(model.PermissionEmployeesWrite)),
			handlers.EmployeeMgmt.DeleteEmployee,
		)
		adminAPI.POST("/employees/:id/reset-session",
			middleware.RequirePermission(string(model.PermissionEmployeesResetSession)),
			handlers.EmployeeMgmt.ResetEmployeeSession,
		)

		// Admin user management
		adminAPI.GET("/users",
			middleware.RequirePermission(string(model.PermissionAdminsRead)),
			handlers.AdminUser.ListAdmins,
		)
		adminAPI.POST("/users",
			middleware.RequirePermission(string(model.PermissionAdminsWrite)),
			handlers.AdminUser.CreateAdmin,
		)
		adminAPI.PUT("/users/:id",
			middleware.RequirePermission(string(model.PermissionAdminsWrite)),
			handlers.AdminUser.UpdateAdmin,
		)
		adminAPI.DELETE("/users/:id",
			middleware.RequirePermission(string(model.PermissionAdminsWrite)),
			handlers.AdminUser.DeleteAdmin,
		)

		// Role management
		adminAPI.GET("/roles",
			middleware.RequirePermission(string(model.PermissionRolesRead)),
			handlers.AdminRole.ListRoles,
		)
		adminAPI.GET("/roles/permissions",
			middleware.RequirePermission(string(model.PermissionRolesRead)),
			handlers.AdminRole.ListPermissions,
		)
		adminAPI.POST("/roles",
			middleware.RequirePermission(string(model.PermissionRolesWrite)),
			handlers.AdminRole.CreateRole,
		)
		adminAPI.PUT("/roles/:id",
			middleware.RequirePermission(string(model.PermissionRolesWrite)),
			handlers.AdminRole.UpdateRole,
		)
		adminAPI.DELETE("/roles/:id",
			middleware.RequirePermission(string(model.PermissionRolesWrite)),
			handlers.AdminRole.DeleteRole,
		)

		// Exam management
		adminAPI.GET("/exams",
			middleware.RequirePermission(string(model.PermissionExamsRead)),
			handlers.Exam.ListExams,
		)
		adminAPI.POST("/exams",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Exam.CreateExam,
		)
		adminAPI.GET("/exams/:id",
			middleware.RequirePermission(string(model.PermissionExamsRead)),
			handlers.Exam.GetExam,
		)
		adminAPI.PUT("/exams/:id",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Exam.UpdateExam,
		)
		adminAPI.DELETE("/exams/:id",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Exam.DeleteExam,
		)
		adminAPI.POST("/exams/:id/publish",
			middleware.RequirePermission(string(model.PermissionExamsPublish)),
			handlers.Exam.PublishExam,
		)
		adminAPI.POST("/exams/:id/archive",
			middleware.RequirePermission(string(model.PermissionExamsPublish)),
			handlers.Exam.ArchiveExam,
		)
		adminAPI.POST("/exams/:id/refresh-cache",
			middleware.RequirePermission(string(model.PermissionExamsPublish)),
			handlers.Exam.RefreshExamCache,
		)

		// Assignment rules
		adminAPI.GET("/exams/:id/rules",
			middleware.RequirePermission(string(model.PermissionExamsRead)),
			handlers.Exam.ListAssignmentRules,
		)
		adminAPI.POST("/exams/:id/rules",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Exam.AddAssignmentRule,
		)
		adminAPI.DELETE("/exams/:id/rules/:rule_id",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Exam.DeleteAssignmentRule,
		)

		// Results and proctoring audit
		adminAPI.GET("/exams/:id/results",
			middleware.RequirePermission(string(model.PermissionExamsRead)),
			handlers.Exam.GetExamResults,
		)
		adminAPI.GET("/exams/:id/employees/:employee_id/violations",
			middleware.RequirePermission(string(model.PermissionExamsRead)),
			handlers.Exam.GetAttemptViolations,
		)
		adminAPI.DELETE("/exams/:id/employees/:employee_id/attempt",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Exam.ResetAttempt,
		)
		adminAPI.GET("/exams/:id/monitor",
			middleware.RequirePermission(string(model.PermissionExamsRead)),
			handlers.Report.MonitorExamSSE,
		)

		// Question management
		adminAPI.GET("/exams/:id/questions",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Question.ListQuestions,
		)
		adminAPI.POST("/exams/:id/questions",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Question.AddQuestion,
		)
		adminAPI.PUT("/exams/:id/questions",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Question.ReplaceQuestions,
		)
		adminAPI.DELETE("/exams/:id/questions/:question_id",
			middleware.RequirePermission(string(model.PermissionExamsWrite)),
			handlers.Question.DeleteQuestion,
		)

		// Leave review
		adminAPI.GET("/leaves",
			middleware.RequirePermission(string(model.PermissionLeaveRead)),
			handlers.Leave.ListLeaves,
		)
		adminAPI.PATCH("/leaves/:id/review",
			middleware.RequirePermission(string(model.PermissionLeaveReview)),
			handlers.Leave.ReviewLeave,
		)

		// Announcements
		adminAPI.POST("/announcements",
			middleware.RequirePermission(string(model.PermissionAnnouncementsWrite)),
			handlers.Announcement.CreateAnnouncement,
		)
		adminAPI.PUT("/announcements/:id",
			middleware.RequirePermission(string(model.PermissionAnnouncementsWrite)),
			handlers.Announcement.UpdateAnnouncement,
		)
		adminAPI.DELETE("/announcements/:id",
			middleware.RequirePermission(string(model.PermissionAnnouncementsWrite)),
			handlers.Announcement.DeleteAnnouncement,
		)
	}

	return router
}
