package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"learningcenter/pkg/logger"
	"learningcenter/pkg/observability"
	"learningcenter/pkg/profilepb"
	"learningcenter/services/profile-service/config"
	"learningcenter/services/profile-service/internal/domain"
	"learningcenter/services/profile-service/internal/infrastructure/repository"
	grpc_server "learningcenter/services/profile-service/internal/transport/grpc"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, lg, observability.Config{
		ServiceName: "profile-service",
		Environment: cfg.Env,
	})
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatal("failed to connect to DB", "error", err)
	}

	lg.Info("running migrations")
	if err := db.AutoMigrate(&domain.Profile{}); err != nil {
		lg.Fatal("failed to migrate DB", "error", err)
	}

	profileServer := grpc_server.NewProfileServer(repository.NewProfileRepository(db), lg.With("component", "grpc"))

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		lg.Fatal("failed to listen", "addr", cfg.GRPCPort, "error", err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	profilepb.RegisterProfileServiceServer(grpcServer, profileServer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("profile service running", "addr", cfg.GRPCPort)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down profile service")
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		lg.Error("profile service stopped", "error", err)
	}
}
