package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/procurement-tracker/internal/app"
	"github.com/joseph-ayodele/procurement-tracker/internal/async"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/repository"
	"github.com/joseph-ayodele/procurement-tracker/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configDir := flag.String("config", "", "directory holding config.yaml")
	flag.Parse()

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := common.LoadConfig(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := common.InitLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	if err := repository.HealthCheck(ctx, rt.DB, 3*time.Second, logger); err != nil {
		logger.Error("DB health failed", "error", err)
		os.Exit(1)
	}
	logger.Info("DB health OK")

	queue := async.NewItemQueue(rt.Orchestrator, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithJobTimeout(cfg.Queue.JobTimeout),
	)

	h := server.NewHandler(server.Deps{
		Processor: rt.Orchestrator,
		Reader:    rt.Store,
		Queue:     queue,
		Exporter:  rt.Exporter,
		Catalog:   rt.Store,
		Cache:     rt.Catalog,
		Health: func(ctx context.Context) error {
			return repository.HealthCheck(ctx, rt.DB, 2*time.Second, logger)
		},
		Logger: logger,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           server.SetupRouter(cfg.Server, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC health for orchestrators that health-check over gRPC
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("grpc listen failed", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("grpc health serving", "addr", cfg.Server.GRPCAddr)
		return grpcServer.Serve(lis)
	})
	if cfg.Ingest.InboxDir != "" {
		g.Go(func() error {
			return watchInbox(gctx, cfg.Ingest, rt.Orchestrator, queue, logger)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		hs.Shutdown()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
		grpcServer.GracefulStop()
		queue.Shutdown(sctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("procurementd stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
