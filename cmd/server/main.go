package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/droptracker/api/handler"
	"github.com/fastygo/droptracker/internal/config"
	"github.com/fastygo/droptracker/internal/infrastructure/buffer"
	"github.com/fastygo/droptracker/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/droptracker/internal/infrastructure/postgres"
	"github.com/fastygo/droptracker/internal/infrastructure/recaptcha"
	redisInfra "github.com/fastygo/droptracker/internal/infrastructure/redis"
	"github.com/fastygo/droptracker/internal/middleware"
	"github.com/fastygo/droptracker/internal/router"
	"github.com/fastygo/droptracker/internal/services"
	"github.com/fastygo/droptracker/internal/services/lifecycle"
	"github.com/fastygo/droptracker/pkg/httpcontext"
	"github.com/fastygo/droptracker/pkg/logger"
	"github.com/fastygo/droptracker/repository/postgres"
	redisRepo "github.com/fastygo/droptracker/repository/redis"
	adminUC "github.com/fastygo/droptracker/usecase/admin"
	authUC "github.com/fastygo/droptracker/usecase/auth"
	contactUC "github.com/fastygo/droptracker/usecase/contact"
	notificationUC "github.com/fastygo/droptracker/usecase/notification"
	profileUC "github.com/fastygo/droptracker/usecase/profile"
	progressUC "github.com/fastygo/droptracker/usecase/progress"
	projectUC "github.com/fastygo/droptracker/usecase/project"
	taskUC "github.com/fastygo/droptracker/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		zapLogger.Fatal("invalid timezone", zap.Error(err))
	}
	if cfg.JWT.Secret == "" {
		zapLogger.Warn("JWT_SECRET is empty, every authenticated request will be rejected")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.RegisterStop("postgres", pool.Close)

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(monitor.Checks{
		Postgres:   pool.Ping,
		Redis:      func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		BufferSize: bufferStore.Size,
	}, cfg.Tracker.MonitorInterval, zapLogger)
	mon.Start()
	manager.RegisterStop("monitor", mon.Stop)

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	progressRepo := postgres.NewProgressRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Tracker.SessionTTL)
	notificationStore := redisRepo.NewNotificationStore(redisClient)
	taskPublisher := redisRepo.NewTaskPublisher(redisClient)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		userRepo,
		taskRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
			MaxItems:   cfg.Buffer.MaxSize,
		},
	)
	bufferProcessor.Start()
	manager.RegisterContext("buffer_processor", bufferProcessor.Stop)

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	notificationUseCase := notificationUC.New(notificationStore, userRepo, cfg.Tracker.NotificationCap, zapLogger)
	progressUseCase := progressUC.New(progressRepo, notificationUseCase, loc, zapLogger)
	authUseCase := authUC.New(userRepo, sessionRepo, progressUseCase, zapLogger)
	profileUseCase := profileUC.New(userRepo, progressUseCase, bufferBridge, zapLogger)
	taskUseCase := taskUC.New(taskRepo, taskPublisher, bufferBridge, progressUseCase, zapLogger)
	projectUseCase := projectUC.New(projectRepo, notificationUseCase, zapLogger)
	adminUseCase := adminUC.New(statsRepo)

	var verifier contactUC.Verifier
	if captcha := recaptcha.NewClient(cfg.Recaptcha, zapLogger); captcha.Enabled() {
		verifier = captcha
	} else {
		zapLogger.Warn("RECAPTCHA_SECRET is empty, contact form submissions are not verified")
	}
	contactUseCase := contactUC.New(contactRepo, verifier, zapLogger)

	sweeper := services.NewExpirySweeper(taskUseCase, mon, mon, cfg.Tracker.SweepInterval, zapLogger)
	sweeper.Start()
	manager.RegisterContext("expiry_sweeper", sweeper.Stop)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.Tracker.SessionTTL),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, progressUseCase, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(notificationUseCase, ctxAdapter, zapLogger),
		Project:      apiHandler.NewProjectHandler(projectUseCase, ctxAdapter, zapLogger),
		Admin:        apiHandler.NewAdminHandler(adminUseCase, ctxAdapter, zapLogger),
		Contact:      apiHandler.NewContactHandler(contactUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:     r.Handler,
		ReadTimeout: cfg.HTTP.ReadTimeout,
		IdleTimeout: cfg.HTTP.IdleTimeout,
		Concurrency: cfg.HTTP.MaxConn,
		Name:        cfg.AppName,
	}
	// WriteTimeout stays unset: task event streams are long-lived responses.

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
