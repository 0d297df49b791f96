package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/idiomas-adm-api/api/swagger"
	"github.com/noah-isme/idiomas-adm-api/internal/handler"
	"github.com/noah-isme/idiomas-adm-api/internal/middleware"
	"github.com/noah-isme/idiomas-adm-api/internal/models"
	"github.com/noah-isme/idiomas-adm-api/internal/repository"
	"github.com/noah-isme/idiomas-adm-api/internal/service"
	"github.com/noah-isme/idiomas-adm-api/pkg/cache"
	"github.com/noah-isme/idiomas-adm-api/pkg/config"
	"github.com/noah-isme/idiomas-adm-api/pkg/database"
	"github.com/noah-isme/idiomas-adm-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/idiomas-adm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/idiomas-adm-api/pkg/middleware/requestid"
	"github.com/noah-isme/idiomas-adm-api/pkg/storage"
)

// @title Idiomas ADM API
// @version 0.1.0
// @description Enrollment validation and academic scoring for the language-school administration portal
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, pending counts will not be cached", zap.Error(err))
		redisClient = nil
	}

	proofStore, err := storage.NewLocalStorage(cfg.Proofs.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare proof storage", zap.Error(err))
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Proofs.SignedURLSecret, cfg.Proofs.SignedURLTTL)

	validate := validator.New()

	// Repositories.
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	matrixRepo := repository.NewMatrixRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	proofRepo := repository.NewProofRepository(db)
	cycleRepo := repository.NewCycleRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Validation.CacheTTL, logr, cfg.Validation.CacheEnabled)
	pendingSvc := service.NewPendingService(enrollmentRepo, cacheSvc, metricsSvc, logr, service.PendingServiceConfig{
		BatchSize:       cfg.Validation.BatchSize,
		ScanConcurrency: cfg.Validation.ScanConcurrency,
		CacheTTL:        cfg.Validation.CacheTTL,
	})
	recounts := service.NewRecountQueue(pendingSvc, cfg.Validation.RecountWorkers, logr)
	validationSvc := service.NewValidationService(enrollmentRepo, pendingSvc, recounts, metricsSvc, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, logr)
	attendanceSvc := service.NewAttendanceService(matrixRepo, logr)
	gradeSvc := service.NewGradeService(gradeRepo, enrollmentRepo, validate, logr)
	proofSvc := service.NewProofService(proofRepo, enrollmentRepo, proofStore, signer, logr)
	cycleSvc := service.NewCycleService(cycleRepo, logr)
	exportSvc := service.NewExportService(enrollmentRepo, attendanceSvc, gradeSvc, exportStore, logr, cfg.Validation.BatchSize)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	recounts.Start(ctx)
	defer recounts.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, validationSvc)
	validationHandler := handler.NewValidationHandler(pendingSvc, cycleSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	proofHandler := handler.NewProofHandler(proofSvc)
	cycleHandler := handler.NewCycleHandler(cycleSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	staff := api.Group("")
	staff.Use(middleware.JWT(authSvc))
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))

	staff.GET("/cycles", cycleHandler.List)
	staff.GET("/cycles/:id", cycleHandler.Get)
	staff.GET("/cycles/:id/pending-count", validationHandler.PendingCount)
	staff.GET("/cycles/:id/attendance", attendanceHandler.Cycle)
	staff.GET("/cycles/:id/enrollments/:enrollmentId/attendance", attendanceHandler.Student)
	staff.GET("/cycles/:id/export", cycleHandler.Export)
	staff.GET("/validation/pending-counts", validationHandler.PendingCounts)

	staff.GET("/enrollments", enrollmentHandler.List)
	staff.GET("/enrollments/:id", enrollmentHandler.Get)
	staff.POST("/enrollments/:id/approve", enrollmentHandler.Approve)
	staff.POST("/enrollments/:id/reject", enrollmentHandler.Reject)
	staff.POST("/enrollments/:id/cancel", enrollmentHandler.Cancel)
	staff.PUT("/enrollments/:id/payment-detail", enrollmentHandler.CorrectPaymentDetail)
	staff.GET("/enrollments/:id/grades", gradeHandler.Summary)
	staff.PUT("/enrollments/:id/grades", gradeHandler.Save)
	staff.GET("/enrollments/:id/proofs", proofHandler.List)
	staff.POST("/enrollments/:id/proofs", proofHandler.Upload)
	staff.GET("/proofs/:id/url", proofHandler.SignedURL)
	staff.GET("/proof-downloads", proofHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
