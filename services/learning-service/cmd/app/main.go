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

	"learningcenter/pkg/dbctx"
	"learningcenter/pkg/logger"
	"learningcenter/pkg/middleware"
	"learningcenter/pkg/observability"
	"learningcenter/pkg/security"
	"learningcenter/services/learning-service/config"
	"learningcenter/services/learning-service/internal/application/usecase"
	"learningcenter/services/learning-service/internal/infrastructure/cache"
	"learningcenter/services/learning-service/internal/infrastructure/profiles"
	"learningcenter/services/learning-service/internal/infrastructure/repository"
	handlers "learningcenter/services/learning-service/internal/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const serviceName = "learning-service"

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

	if cfg.JWTAccessSecret == "" {
		lg.Fatal("JWT_ACCESS_SECRET is required")
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
	lg.Info("running migrations")
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		lg.Fatal("failed to migrate DB", "error", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		lg.Warn("redis unavailable, cache and rate limiting degrade", "addr", cfg.RedisAddr, "error", err)
	}

	profileClient, err := profiles.Dial(cfg.ProfileSvcURL, lg)
	if err != nil {
		lg.Fatal("failed to create profile service client", "error", err)
	}
	defer profileClient.Close()

	courseRepo := repository.NewCourseRepository(db, cache.NewCourseCache(rdb, cfg.CourseCacheTTL, lg), lg)
	enrollmentRepo := repository.NewEnrollmentRepository(db, courseRepo)
	studentRepo := repository.NewStudentRepository(db)
	tx := dbctx.NewRunner(db)

	bus := usecase.NewEventBus()
	courseUC := usecase.NewCourseUseCase(courseRepo, tx, lg)
	enrollmentUC := usecase.NewEnrollmentUseCase(enrollmentRepo, courseRepo, studentRepo, tx, bus, lg)
	studentUC := usecase.NewStudentUseCase(studentRepo, profileClient, tx, lg)
	bus.SubscribeTutorialCompleted(studentUC.OnTutorialCompleted)

	tokens := security.NewTokenManager(cfg.JWTAccessSecret, "", 0, 0)
	router := handlers.NewRouter(
		handlers.RouterConfig{
			ServiceName:      serviceName,
			AllowedOrigins:   cfg.Origins(),
			EnrollmentLimit:  cfg.EnrollmentRateLimit,
			EnrollmentWindow: cfg.EnrollmentRateWindow,
		},
		lg.With("component", "http"),
		middleware.NewAuthMiddleware(tokens, lg),
		middleware.NewRateLimiter(rdb, lg),
		handlers.NewCourseHandler(courseUC, enrollmentUC),
		handlers.NewStudentHandler(studentUC, enrollmentUC),
		handlers.NewEnrollmentHandler(enrollmentUC),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("learning service running", "addr", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down learning service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("learning service stopped", "error", err)
	}
}
