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

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kola-hr/kola/internal/app"
	"github.com/kola-hr/kola/internal/audit"
	audithttp "github.com/kola-hr/kola/internal/audit/http"
	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/employees"
	"github.com/kola-hr/kola/internal/ess"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/leave"
	"github.com/kola-hr/kola/internal/observability"
	"github.com/kola-hr/kola/internal/overview"
	"github.com/kola-hr/kola/internal/payroll"
	"github.com/kola-hr/kola/internal/platform/cache"
	"github.com/kola-hr/kola/internal/platform/db"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/shell"
	"github.com/kola-hr/kola/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unreachable at startup", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	// The audit log is optional; without a database it stays disabled.
	var auditLog *audit.Service
	if cfg.AuditEnabled() {
		pool, err := openAuditStore(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		repo := audit.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("prepare audit schema", slog.Any("error", err))
			os.Exit(1)
		}
		auditLog = audit.NewService(repo)
	} else {
		logger.Info("PG_DSN not set, audit log disabled")
	}

	sessionManager := shared.NewSessionManager(redisClient, "kola_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	client := hrapi.New(
		hrapi.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout},
		hrapi.WithLogger(logger),
		hrapi.WithObserver(metrics),
	)
	authMiddleware := auth.Middleware{
		Client: client,
		Cache:  auth.NewProfileCache(cfg.ProfileCacheTTL),
		Logger: logger,
	}
	rbacMiddleware := rbac.Middleware{Logger: logger}
	pages := shell.NewRenderer(templates, csrfManager, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthMiddleware:     authMiddleware,
		RBACMiddleware:     rbacMiddleware,
		AuthHandler:        auth.NewHandler(logger, templates, sessionManager, csrfManager),
		OverviewHandler:    overview.NewHandler(logger, pages, auditLog, rbacMiddleware),
		EmployeesHandler:   employees.NewHandler(logger, pages, auditLog, rbacMiddleware),
		PayrollHandler:     payroll.NewHandler(logger, pages, auditLog, rbacMiddleware).WithLocker(shared.NewLocker(redisClient, 2*cfg.APITimeout)),
		LeaveHandler:       leave.NewHandler(logger, pages, auditLog, rbacMiddleware),
		ESSHandler:         ess.NewHandler(logger, pages, auditLog, rbacMiddleware),
		AuditHandler:       audithttp.NewHandler(logger, auditLog, pages),
		PermissionsHandler: rbac.NewPermissionsHandler(pages, rbacMiddleware),
		Metrics:            metrics,
		HealthCheck: func(ctx context.Context) error {
			return cache.Ping(ctx, redisClient)
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", client.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func openAuditStore(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.New(connectCtx, dsn)
}
