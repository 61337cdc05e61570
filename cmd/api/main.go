package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/financefusion/api/internal/auth"
	"github.com/financefusion/api/internal/background"
	"github.com/financefusion/api/internal/config"
	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/handlers"
	middlewareCustom "github.com/financefusion/api/internal/middleware"
	"github.com/financefusion/api/internal/repositories"
	"github.com/financefusion/api/internal/routes"
	"github.com/financefusion/api/internal/services"
	pkghttp "github.com/financefusion/api/pkg/http"
	pkglogger "github.com/financefusion/api/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		logger.Warn("unknown LOG_LEVEL, using info", slog.String("level", cfg.Server.LogLevel))
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	currencyRepo := repositories.NewCurrencyRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	budgetRepo := repositories.NewBudgetRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	automationRepo := repositories.NewAutomationRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay:   cfg.Auth.LoginDelay,
		RandomDelay: cfg.Auth.LoginJitter,
	})
	auditLogger := pkglogger.NewAuditLogger(logger)

	// A nil provider disables two-factor enrolment.
	var totp services.TOTPProvider
	if cfg.TwoFactor.EncryptionKey != nil {
		manager, err := auth.NewTOTPManager(cfg.TwoFactor.EncryptionKey, cfg.TwoFactor.Issuer)
		if err != nil {
			logger.Error("failed to initialize two-factor", slog.Any("error", err))
			os.Exit(1)
		}
		totp = manager
	} else {
		logger.Warn("TOTP_ENCRYPTION_KEY not set, two-factor enrolment disabled")
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, sessionRepo, tokenManager, totp, timingDelay,
		services.AuthConfig{SessionTTL: cfg.Auth.SessionTTL, LockoutThreshold: cfg.Auth.LockoutThreshold},
		logger, auditLogger)
	userService := services.NewUserService(userRepo, sessionRepo, logger, auditLogger)
	twoFactorService := services.NewTwoFactorService(userRepo, totp, logger, auditLogger)
	planService := services.NewPlanService(planRepo, logger)
	currencyService := services.NewCurrencyService(currencyRepo, logger)
	tagService := services.NewTagService(tagRepo, logger)
	accountService := services.NewAccountService(accountRepo, tagRepo, planService, logger)
	budgetService := services.NewBudgetService(budgetRepo, planService, logger)
	transactionService := services.NewTransactionService(transactionRepo, accountRepo, tagRepo, planService, logger)
	automationService := services.NewAutomationService(automationRepo, accountRepo, planService, logger)
	notificationService := services.NewNotificationService(notificationRepo, planService, logger)

	// Initialize handlers
	cookies := auth.CookieConfig{
		Domain:   cfg.Auth.CookieDomain,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: "strict",
	}
	h := routes.Handlers{
		Health:        handlers.NewHealthHandler(db, logger),
		Auth:          handlers.NewAuthHandler(authService, ipConfig, cookies),
		Users:         handlers.NewUserHandler(userService, ipConfig, cookies),
		TwoFactor:     handlers.NewTwoFactorHandler(twoFactorService),
		Currencies:    handlers.NewCurrencyHandler(currencyService),
		Tags:          handlers.NewTagHandler(tagService),
		Plans:         handlers.NewPlanHandler(planService),
		Accounts:      handlers.NewAccountHandler(accountService),
		Budgets:       handlers.NewBudgetHandler(budgetService),
		Transactions:  handlers.NewTransactionHandler(transactionService),
		Automations:   handlers.NewAutomationHandler(automationService),
		Notifications: handlers.NewNotificationHandler(notificationService),
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, h, authService, ipConfig, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start session cleanup
	cleanupManager := background.NewCleanupManager(sessionRepo, logger, cfg.Auth.CleanupInterval)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
