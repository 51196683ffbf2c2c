package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/club-system/config"
	"github.com/Dosada05/club-system/db"
	"github.com/Dosada05/club-system/handlers"
	"github.com/Dosada05/club-system/middleware"
	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/realtime"
	"github.com/Dosada05/club-system/repositories"
	api "github.com/Dosada05/club-system/routes"
	"github.com/Dosada05/club-system/scheduler"
	"github.com/Dosada05/club-system/services"
	"github.com/Dosada05/club-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const (
	overdueCheckInterval = 24 * time.Hour
	generationInterval   = 1 * time.Hour
	remindersInterval    = 6 * time.Hour
	autoBackupInterval   = 24 * time.Hour
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := db.Migrate(startupCtx, dbConn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация загрузчика файлов (Cloudflare R2), если настроен
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("Cloudflare R2 is not configured, backups are stored locally only")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	kv := repositories.NewPostgresKeyValueStore(dbConn)
	memberRepo := repositories.NewMemberRepository(kv)
	paymentRepo := repositories.NewPaymentRepository(kv)
	sessionRepo := repositories.NewSessionRepository(kv)
	equipmentRepo := repositories.NewEquipmentRepository(kv)
	loanRepo := repositories.NewLoanRepository(kv)
	messageRepo := repositories.NewMessageRepository(kv)
	userRepo := repositories.NewUserRepository(kv)
	backupRepo := repositories.NewBackupRepository(kv)

	// Загрузка состояния. Повреждённые данные останавливают запуск,
	// молчаливый сброс коллекций недопустим.
	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{"members", memberRepo.Load},
		{"payments", paymentRepo.Load},
		{"sessions", sessionRepo.Load},
		{"equipment", equipmentRepo.Load},
		{"loans", loanRepo.Load},
		{"messages", messageRepo.Load},
		{"users", userRepo.Load},
		{"backups", backupRepo.Load},
	}
	for _, l := range loaders {
		if err := l.load(startupCtx); err != nil {
			logger.Error("failed to load persisted state", slog.String("collection", l.name), slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	memberService := services.NewMemberService(memberRepo)
	paymentService := services.NewPaymentService(paymentRepo, memberRepo)
	attendanceService := services.NewAttendanceService(sessionRepo, memberRepo)
	equipmentService := services.NewEquipmentService(equipmentRepo, loanRepo, memberRepo)
	reminderService := services.NewReminderService(paymentRepo, memberRepo, sessionRepo, wsHub)
	communicationService := services.NewCommunicationService(messageRepo, wsHub)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, userService)
	backupService := services.NewBackupService(
		backupRepo,
		memberRepo,
		paymentRepo,
		sessionRepo,
		equipmentRepo,
		loanRepo,
		messageRepo,
		uploader,
	)
	logger.Info("Services initialized")

	if err := authService.EnsureDefaultAdmin(startupCtx); err != nil {
		logger.Error("failed to ensure default admin", slog.Any("error", err))
		os.Exit(1)
	}

	// Фоновые задачи
	sched := scheduler.New(logger)
	sched.Add(scheduler.Job{
		Name:     "payment-generation",
		Interval: generationInterval,
		Run: func(ctx context.Context) error {
			created, err := paymentService.GenerateMonthlyPayments(ctx, time.Now())
			if err != nil {
				return err
			}
			if len(created) > 0 {
				logger.Info("monthly payments generated", slog.Int("count", len(created)))
			}
			return nil
		},
	})
	sched.Add(scheduler.Job{
		Name:     "overdue-check",
		Interval: overdueCheckInterval,
		Run: func(ctx context.Context) error {
			transitioned, err := paymentService.CheckOverduePayments(ctx)
			if err != nil {
				return err
			}
			if transitioned > 0 {
				logger.Info("payments transitioned to overdue", slog.Int("count", transitioned))
			}
			return nil
		},
	})
	sched.Add(scheduler.Job{
		Name:     "reminders",
		Interval: remindersInterval,
		Run: func(ctx context.Context) error {
			_, err := reminderService.PublishReminders(ctx)
			return err
		},
	})
	sched.Add(scheduler.Job{
		Name:     "auto-backup",
		Interval: autoBackupInterval,
		Run: func(ctx context.Context) error {
			settings, err := backupService.GetSyncSettings(ctx)
			if err != nil {
				return err
			}
			if !settings.AutoBackup {
				return nil
			}
			_, err = backupService.CreateBackup(ctx, "system", models.BackupAutomatic)
			return err
		},
	})

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	go func() {
		if err := sched.Run(schedulerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler stopped", slog.Any("error", err))
		}
	}()
	logger.Info("Background scheduler started")

	// Инициализация обработчиков HTTP
	auth := middleware.NewAuth(cfg.JWTSecretKey, userService)
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	memberHandler := handlers.NewMemberHandler(memberService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	equipmentHandler := handlers.NewEquipmentHandler(equipmentService)
	reminderHandler := handlers.NewReminderHandler(reminderService, paymentService)
	communicationHandler := handlers.NewCommunicationHandler(communicationService)
	userHandler := handlers.NewUserHandler(userService)
	backupHandler := handlers.NewBackupHandler(backupService)
	dashboardHandler := handlers.NewDashboardHandler(memberService, paymentService, equipmentService, reminderService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		auth,
		authHandler,
		memberHandler,
		paymentHandler,
		attendanceHandler,
		equipmentHandler,
		reminderHandler,
		communicationHandler,
		userHandler,
		backupHandler,
		dashboardHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancelScheduler()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
