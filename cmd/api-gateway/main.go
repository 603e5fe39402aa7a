package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-academic-api/api/swagger"
	"github.com/noah-isme/sma-academic-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-academic-api/internal/middleware"
	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/repository"
	"github.com/noah-isme/sma-academic-api/internal/service"
	"github.com/noah-isme/sma-academic-api/pkg/cache"
	"github.com/noah-isme/sma-academic-api/pkg/config"
	"github.com/noah-isme/sma-academic-api/pkg/database"
	"github.com/noah-isme/sma-academic-api/pkg/jobs"
	"github.com/noah-isme/sma-academic-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-academic-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-academic-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-academic-api/pkg/storage"
)

// @title SMA Academic API
// @version 1.0.0
// @description Exam scoring, grade and attendance aggregation, term results and progress reports
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	app := buildApp(ctx, cfg, db, redisClient, logr)
	defer app.shutdown()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type application struct {
	router   *gin.Engine
	shutdown func()
}

func buildApp(ctx context.Context, cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) *application {
	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	examRepo := repository.NewExamRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	reportRepo := repository.NewReportRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, submissionRepo, subjectRepo, validate, logr, metricsSvc, service.ExamServiceConfig{StrictAnswers: cfg.Exams.StrictAnswers})
	gradeSvc := service.NewGradeService(gradeRepo, subjectRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, subjectRepo, cacheSvc, validate, logr)
	resultSvc := service.NewResultService(gradeRepo, attendanceRepo, resultRepo, cacheSvc, metricsSvc, validate, logr)
	reportSvc := service.NewReportService(gradeRepo, attendanceRepo, assignmentRepo, reportRepo, metricsSvc, validate, logr)

	shutdown := func() {}
	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exporter := service.NewExportService(resultRepo, reportRepo, files, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)

		worker := service.NewExportWorker(exportJobRepo, exporter, metricsSvc, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			BufferSize: 64,
			MaxRetries: cfg.Exports.WorkerRetries,
			RetryDelay: 5 * time.Second,
			Logger:     logr,
		})
		queue.Start(ctx)
		shutdown = queue.Stop

		exportSvc := service.NewExportJobService(exportJobRepo, resultRepo, reportRepo, queue, exporter, metricsSvc, validate, logr, service.ExportJobConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		})
		exportSvc.RecoverPendingJobs(ctx)
		exportSvc.StartCleanup(ctx)
		exportHandler = handler.NewExportHandler(exportSvc)
	}

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(internalmiddleware.Metrics(metricsSvc))
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		subjects:   handler.NewSubjectHandler(subjectSvc),
		exams:      handler.NewExamHandler(examSvc),
		grades:     handler.NewGradeHandler(gradeSvc),
		attendance: handler.NewAttendanceHandler(attendanceSvc),
		results:    handler.NewResultHandler(resultSvc),
		reports:    handler.NewReportHandler(reportSvc),
		exports:    exportHandler,
		metrics:    metricsHandler,
	}, authSvc)

	return &application{router: r, shutdown: shutdown}
}

type routeHandlers struct {
	auth       *handler.AuthHandler
	subjects   *handler.SubjectHandler
	exams      *handler.ExamHandler
	grades     *handler.GradeHandler
	attendance *handler.AttendanceHandler
	results    *handler.ResultHandler
	reports    *handler.ReportHandler
	exports    *handler.ExportHandler
	metrics    *handler.MetricsHandler
}

func registerRoutes(api *gin.RouterGroup, h routeHandlers, tokens internalmiddleware.TokenValidator) {
	api.POST("/auth/login", h.auth.Login)
	if h.exports != nil {
		api.GET("/export/:token", h.exports.Download)
	}

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(tokens))

	staff := internalmiddleware.RequireStaff()
	admin := internalmiddleware.RequireRoles(models.RoleAdmin)
	student := internalmiddleware.RequireRoles(models.RoleStudent)
	learner := internalmiddleware.StaffOrLearner()

	secured.GET("/auth/me", h.auth.Me)

	secured.GET("/subjects", h.subjects.List)
	secured.GET("/subjects/:id", h.subjects.Get)
	secured.POST("/subjects", admin, h.subjects.Create)

	exams := secured.Group("/exams")
	exams.POST("", staff, h.exams.Create)
	exams.GET("/:id", h.exams.Get)
	exams.POST("/:id/publish", staff, h.exams.Publish)
	exams.POST("/:id/submissions", student, h.exams.Submit)
	exams.GET("/:id/submissions", staff, h.exams.ListSubmissions)
	exams.GET("/:id/submissions/me", student, h.exams.MySubmission)

	grades := secured.Group("/grades")
	grades.POST("", staff, h.grades.Create)
	grades.PUT("/:id", staff, h.grades.Update)
	grades.DELETE("/:id", staff, h.grades.Delete)
	grades.GET("", h.grades.List)
	grades.GET("/stats/:studentId", learner, h.grades.Stats)

	attendance := secured.Group("/attendance")
	attendance.POST("", staff, h.attendance.Mark)
	attendance.POST("/bulk", staff, h.attendance.MarkBulk)
	attendance.PUT("/:id", staff, h.attendance.Update)
	attendance.GET("", h.attendance.List)
	attendance.GET("/stats/:studentId", learner, h.attendance.Stats)

	results := secured.Group("/results")
	results.POST("/compose", staff, h.results.Compose)
	results.GET("/:studentId", learner, h.results.Get)
	results.GET("/:studentId/history", learner, h.results.History)

	reports := secured.Group("/reports")
	reports.POST("", staff, h.reports.Generate)
	reports.POST("/:id/publish", staff, h.reports.Publish)
	reports.GET("/:id", h.reports.Get)
	reports.GET("/student/:studentId", learner, h.reports.ListForStudent)

	if h.exports != nil {
		secured.POST("/exports", h.exports.Create)
		secured.GET("/exports/:id", h.exports.Status)
	}

	secured.GET("/system/metrics", admin, h.metrics.Summary)
}
