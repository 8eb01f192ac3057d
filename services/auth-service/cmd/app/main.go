package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learningcenter/pkg/logger"
	"learningcenter/pkg/middleware"
	"learningcenter/pkg/observability"
	"learningcenter/pkg/security"
	"learningcenter/services/auth-service/config"
	"learningcenter/services/auth-service/internal/application/usecase"
	"learningcenter/services/auth-service/internal/domain"
	"learningcenter/services/auth-service/internal/infrastructure/cache"
	"learningcenter/services/auth-service/internal/infrastructure/repository"
	handlers "learningcenter/services/auth-service/internal/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const serviceName = "auth-service"

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer lg.Sync()

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		lg.Fatal("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, lg, observability.Config{
		ServiceName: serviceName,
		Environment: cfg.Env,
	})
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatal("failed to connect to DB", "error", err)
	}
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		lg.Fatal("failed to migrate DB", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	if err := userRepo.SeedRoles(ctx, domain.Roles()); err != nil {
		lg.Fatal("failed to seed roles", "error", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		lg.Fatal("failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
	}

	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, 0, 0)
	authUseCase := usecase.NewAuthUseCase(userRepo, cache.NewTokenCache(rdb), security.NewPasswordHasher(), tokenManager, lg)
	authHandler := handlers.NewAuthHandler(authUseCase, cfg.CookieDomain, cfg.CookieSecure, int(tokenManager.RefreshTTL().Seconds()))
	router := handlers.NewRouter(serviceName, cfg.Origins(), lg.With("component", "http"), authHandler, middleware.NewRateLimiter(rdb, lg))

	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("auth service running", "addr", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down auth service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("auth service stopped", "error", err)
	}
}
