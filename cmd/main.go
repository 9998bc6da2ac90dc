package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	clubv1 "github.com/Leganyst/golf-club/internal/api/club/v1"
	"github.com/Leganyst/golf-club/internal/app"
	"github.com/Leganyst/golf-club/internal/config"
	"github.com/Leganyst/golf-club/internal/handlers"
	"github.com/Leganyst/golf-club/internal/jobs"
	"github.com/Leganyst/golf-club/internal/logger"
	"github.com/Leganyst/golf-club/internal/obs"
	"github.com/Leganyst/golf-club/internal/service"
)

func main() {
	// 1. .env необязателен, переменные окружения важнее.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("load db config: %v", err)
	}

	zl, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Трассировка.
	shutdownTracer, err := obs.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint, zl)
	if err != nil {
		zl.Fatal("init tracer", zap.Error(err))
	}

	// 3. БД, кэш, уведомления, сервисы.
	a, err := app.New(ctx, cfg, dbCfg, zl)
	if err != nil {
		zl.Fatal("init app", zap.Error(err))
	}

	// 4. gRPC.
	grpcServer := grpc.NewServer()
	clubv1.RegisterClubServiceServer(grpcServer, service.NewClubService(a.Manager, zl.Named("grpc")))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		zl.Fatal("listen grpc", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}
	go func() {
		zl.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			zl.Error("grpc serve", zap.Error(err))
			stop()
		}
	}()

	// 5. HTTP.
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handlers.New(a.Manager, a.Schedules, a.Inbox, a.Location, zl.Named("http"))
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handlers.NewRouter(h, a.Tokens, zl.Named("http")),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		zl.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("http serve", zap.Error(err))
			stop()
		}
	}()

	// 6. Открытие записи по open_at.
	opener := jobs.NewOpener(a.Schedules, cfg.OpenerInterval, zl.Named("opener"))
	opener.Start(ctx)

	<-ctx.Done()
	zl.Info("shutting down")

	opener.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	a.Close()
	if err := shutdownTracer(shutdownCtx); err != nil {
		zl.Warn("tracer shutdown", zap.Error(err))
	}
	zl.Info("server exited")
}
