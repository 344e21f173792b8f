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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/intern-portal-api/api/swagger"
	"github.com/noah-isme/intern-portal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/intern-portal-api/internal/middleware"
	"github.com/noah-isme/intern-portal-api/internal/repository"
	"github.com/noah-isme/intern-portal-api/internal/service"
	"github.com/noah-isme/intern-portal-api/pkg/cache"
	"github.com/noah-isme/intern-portal-api/pkg/config"
	"github.com/noah-isme/intern-portal-api/pkg/database"
	"github.com/noah-isme/intern-portal-api/pkg/logger"
	"github.com/noah-isme/intern-portal-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/intern-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/intern-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/intern-portal-api/pkg/response"
	"github.com/noah-isme/intern-portal-api/pkg/storage"
)

// @title Intern Portal API
// @version 1.0.0
// @description Internship tracking: registration approval, logbooks, leave, complaints, projects and notifications.
// @BasePath /
// @schemes http https

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logr.Warn("redis disabled, sessions are kept in memory and dashboard caching is off")
	}

	metrics := service.NewMetricsService()

	sender, err := mail.NewSender(cfg.Mail, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to configure mail", "error", err)
	}
	dispatcher := mail.NewDispatcher(sender, mail.DispatcherConfig{
		Workers:    cfg.Mail.Workers,
		Retries:    cfg.Mail.Retries,
		RetryDelay: cfg.Mail.RetryDelay,
		QueueSize:  cfg.Mail.QueueSize,
		Observer:   metrics.RecordEmail,
	}, logr)
	dispatcher.Start(ctx)

	handlers, sessionResolver, err := buildHandlers(cfg, db, redisClient, metrics, dispatcher, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build services", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(response.Diagnostics(cfg.Env != config.EnvProduction))
	r.Use(internalmiddleware.Metrics(metrics))
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes

	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	ops := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, handlers, internalmiddleware.Session(sessionResolver, cfg.Session.CookieName))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
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
		logr.Sugar().Errorw("server shutdown", "error", err)
	}
	dispatcher.Stop()
}

func buildHandlers(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, metrics *service.MetricsService, dispatcher *mail.Dispatcher, logr *zap.Logger) (handler.Handlers, internalmiddleware.SessionResolver, error) {
	loc := time.UTC
	if cfg.Workflow.Timezone != "" {
		l, err := time.LoadLocation(cfg.Workflow.Timezone)
		if err != nil {
			return handler.Handlers{}, nil, fmt.Errorf("load workflow timezone: %w", err)
		}
		loc = l
	}

	admins := repository.NewAdminRepository(db)
	interns := repository.NewInternRepository(db)
	logbooks := repository.NewLogbookRepository(db)
	leave := repository.NewLeaveRepository(db)
	complaints := repository.NewComplaintRepository(db)
	projects := repository.NewProjectRepository(db)
	messages := repository.NewMessageRepository(db)
	notifications := repository.NewNotificationRepository(db)

	var sessions service.SessionStore
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		sessions = repository.NewRedisSessionRepository(redisClient)
		cacheRepo = repository.NewCacheRepository(redisClient, "portal")
	} else {
		sessions = repository.NewMemorySessionRepository()
	}

	validate := service.NewValidator()
	hasher := service.NewBcryptHasher(0)
	policy := service.AttachmentPolicy{MaxBytes: cfg.Uploads.MaxFileSizeBytes, AllowedMIMEs: cfg.Uploads.AllowedMIMEs}
	submissionPaging := service.PagingConfig{DefaultLimit: cfg.Pagination.SubmissionLimit, MaxLimit: cfg.Pagination.MaxLimit}
	apiBase := cfg.PublicBaseURL + cfg.APIPrefix

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)
	notifier := service.NewNotificationService(notifications, admins, dispatcher, metrics, logr, service.NotificationConfig{
		PublicBaseURL: cfg.PublicBaseURL,
		DefaultLimit:  cfg.Pagination.NotificationLimit,
		MaxLimit:      cfg.Pagination.MaxLimit,
	})
	dashboard := service.NewDashboardService(repository.NewDashboardRepository(db), notifier, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	authSvc := service.NewAuthService(admins, interns, sessions, hasher, validate, logr, service.AuthConfig{
		SessionTTL:  cfg.Session.TTL,
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	internSvc := service.NewInternService(interns, hasher, policy, notifier, dashboard, validate, logr, submissionPaging)
	var approvalRunner service.BackgroundRunner
	if cfg.Workflow.ApprovalEmailsAsync {
		approvalRunner = dispatcher
	}
	approvalSvc := service.NewApprovalService(interns, notifier, dashboard, validate, logr, approvalRunner)
	adminSvc := service.NewAdminService(admins, hasher, validate, logr)
	calendar := service.WeekCalendar{Location: loc, CutoffDay: cfg.Workflow.LogbookCutoffDay, CutoffHour: cfg.Workflow.LogbookCutoffHour}
	logbookSvc := service.NewLogbookService(logbooks, interns, calendar, policy, notifier, dashboard, validate, logr, submissionPaging)
	leaveSvc := service.NewLeaveService(leave, interns, loc, policy, notifier, dashboard, validate, logr, submissionPaging)
	complaintSvc := service.NewComplaintService(complaints, interns, notifier, dashboard, validate, logr, submissionPaging)
	signer := storage.NewLinkSigner(cfg.Downloads.Secret, cfg.Downloads.TTL)
	projectSvc := service.NewProjectService(projects, signer, apiBase+"/files/", policy, notifier, dashboard, validate, logr, submissionPaging)
	messageSvc := service.NewMessageService(messages, policy, notifier, metrics, cfg.PublicBaseURL, validate, logr, submissionPaging)

	maxUpload := cfg.Uploads.MaxFileSizeBytes
	return handler.Handlers{
		Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Domain: cfg.Session.Domain,
			Secure: cfg.Session.SecureCookie,
		}),
		Interns:       handler.NewInternHandler(internSvc, approvalSvc, maxUpload),
		Admins:        handler.NewAdminHandler(adminSvc),
		Logbooks:      handler.NewLogbookHandler(logbookSvc, maxUpload),
		Leave:         handler.NewLeaveHandler(leaveSvc, maxUpload),
		Complaints:    handler.NewComplaintHandler(complaintSvc),
		Projects:      handler.NewProjectHandler(projectSvc, maxUpload),
		Messages:      handler.NewMessageHandler(messageSvc, maxUpload),
		Notifications: handler.NewNotificationHandler(notifier),
		Dashboard:     handler.NewDashboardHandler(dashboard),
	}, authSvc, nil
}
