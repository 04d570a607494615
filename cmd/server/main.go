package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stratushr/stratus-backend/internal/ai"
	"github.com/stratushr/stratus-backend/internal/config"
	"github.com/stratushr/stratus-backend/internal/database"
	"github.com/stratushr/stratus-backend/internal/handler"
	"github.com/stratushr/stratus-backend/internal/logger"
	"github.com/stratushr/stratus-backend/internal/repository"
	"github.com/stratushr/stratus-backend/internal/router"
	"github.com/stratushr/stratus-backend/internal/service"
	"github.com/stratushr/stratus-backend/internal/session"
	"github.com/stratushr/stratus-backend/internal/validator"
	"github.com/stratushr/stratus-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Stratus HR Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	employeeRepo := repository.NewEmployeeRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	ruleRepo := repository.NewAssignmentRuleRepository(pool)
	violationRepo := repository.NewViolationRepository(pool)
	leaveRepo := repository.NewLeaveRepository(pool)
	announcementRepo := repository.NewAnnouncementRepository(pool)
	reportRepo := repository.NewReportRepository(pool, rdb)
	snapshotStore := repository.NewSnapshotStore(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	employeeService := service.NewEmployeeService(employeeRepo, authService)
	adminService := service.NewAdminService(adminRepo, roleRepo, authService)
	departmentService := service.NewDepartmentService(departmentRepo)
	examService := service.NewExamService(examRepo, questionRepo, ruleRepo, rdb, log)
	questionService := service.NewQuestionService(questionRepo)
	attemptService := service.NewAttemptService(attemptRepo, examRepo, ruleRepo, violationRepo, snapshotStore, rdb)
	gradingService := service.NewGradingService(examService, examRepo, rdb, log)
	proctorService := service.NewProctorService(rdb, log)
	leaveService := service.NewLeaveService(leaveRepo)
	announcementService := service.NewAnnouncementService(announcementRepo)
	reportService := service.NewReportService(reportRepo)

	aiClient := ai.NewClient(cfg)
	assistantService := service.NewAssistantService(aiClient, employeeRepo, leaveService, announcementRepo, log)

	// ─── Session Manager ──────────────────────────────────────────────
	sessionManager := session.NewManager(session.Deps{
		Store:      snapshotStore,
		Exams:      examService,
		Grader:     gradingService,
		Analyzer:   aiClient,
		Answers:    proctorService,
		Violations: proctorService,
	}, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, employeeService, adminService),
		Portal:       handler.NewPortalHandler(attemptService, examService),
		WS:           handler.NewWSHandler(sessionManager, attemptService, log, cfg.AllowedOrigins),
		Leave:        handler.NewLeaveHandler(leaveService),
		Announcement: handler.NewAnnouncementHandler(announcementService),
		Assistant:    handler.NewAssistantHandler(assistantService, log),
		Exam:         handler.NewExamHandler(examService, attemptService),
		Question:     handler.NewQuestionHandler(questionService, examService),
		EmployeeMgmt: handler.NewEmployeeManagementHandler(employeeService, authService),
		Department:   handler.NewDepartmentHandler(departmentService),
		AdminUser:    handler.NewAdminUserHandler(adminService),
		AdminRole:    handler.NewAdminRoleHandler(adminService),
		Report:       handler.NewReportHandler(examService, attemptService, reportService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	autosaveWorker := worker.NewAutosaveWorker(pool, rdb, log)
	violationWorker := worker.NewViolationWorker(pool, rdb, log)
	resultWorker := worker.NewResultWorker(pool, rdb, log)

	go autosaveWorker.Start(workerCtx)
	go violationWorker.Start(workerCtx)
	go resultWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load all published exams into Redis BEFORE accepting traffic.
	// This avoids race conditions from lazy loading under thundering herd.
	if err := examService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop live exam sessions. Snapshots stay in Redis so attempts
	// resume with the right remaining time when the server returns.
	sessionManager.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
