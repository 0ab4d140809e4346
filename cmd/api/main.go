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

	"expense-tracker/internal/audit"
	"expense-tracker/internal/auth"
	"expense-tracker/internal/categories"
	"expense-tracker/internal/config"
	"expense-tracker/internal/groups"
	"expense-tracker/internal/httpapi"
	"expense-tracker/internal/reporting"
	"expense-tracker/internal/transactions"
	"expense-tracker/internal/users"
	"expense-tracker/migrations"
	"expense-tracker/pkg/logger"
	"expense-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	codec, err := auth.NewCodec(cfg.Auth.AccessKey, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		ms, err := utils.LoadMigrations(migrations.FS)
		if err != nil {
			log.Error("migrations load failed", "err", err)
			os.Exit(1)
		}
		applied, err := utils.Migrate(rootCtx, db, ms)
		if err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		log.Info("migrations applied", "versions", applied)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	usersRepo := users.NewPostgresRepo(db)
	categoriesRepo := categories.NewPostgresRepo(db)

	groupsSvc := groups.NewService(groups.NewPostgresRepo(db), usersRepo)
	txSvc := transactions.NewService(transactions.NewPostgresRepo(db), usersRepo, categoriesRepo)
	categoriesSvc := categories.NewService(categoriesRepo, txSvc)
	usersSvc := users.NewService(usersRepo, codec).WithCleanup(txSvc, groupsSvc)

	h := httpapi.Handlers{
		Guard:        auth.NewDefaultGuard(codec, cfg.Auth.CookiePath),
		Users:        usersSvc,
		Groups:       groupsSvc,
		Categories:   categoriesSvc,
		Transactions: txSvc,
		Reports:      reporting.NewService(txSvc),
		Audit:        audit.NewService(audit.NewPostgresRepo(db)),
		Limiter:      httpapi.NewRedisLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Window),
		CookiePath:   cfg.Auth.CookiePath,
		AccessTTL:    cfg.Auth.AccessTokenTTL,
		RefreshTTL:   cfg.Auth.RefreshTokenTTL,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log, "/healthz"))
	registerRoutes(r, h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
