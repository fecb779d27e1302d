package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/expense-assistant/internal/async"
	"github.com/joseph-ayodele/expense-assistant/internal/cache"
	"github.com/joseph-ayodele/expense-assistant/internal/common"
	"github.com/joseph-ayodele/expense-assistant/internal/conversation"
	"github.com/joseph-ayodele/expense-assistant/internal/events"
	"github.com/joseph-ayodele/expense-assistant/internal/expenses"
	"github.com/joseph-ayodele/expense-assistant/internal/llm/provider"
	"github.com/joseph-ayodele/expense-assistant/internal/observability"
	repo "github.com/joseph-ayodele/expense-assistant/internal/repository"
	"github.com/joseph-ayodele/expense-assistant/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repo.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	model, err := provider.New(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to configure language model", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.NoopPublisher{Logger: logger}
	if cfg.Events.AMQPURL != "" {
		client, err := events.NewAMQPClient(cfg.Events.AMQPURL, cfg.Events.Exchange, cfg.Events.Queue, logger)
		if err != nil {
			logger.Error("failed to connect to broker", "error", err)
			os.Exit(1)
		}
		publisher = client
	}
	defer publisher.Close()

	queue := async.NewPublishQueue(publisher, logger,
		async.WithWorkers(cfg.Events.Workers),
		async.WithQueueSize(cfg.Events.QueueSize),
	)

	orchestrator := conversation.NewOrchestrator(model, conversation.Config{
		ModelTimeout:    cfg.LLM.Timeout,
		MinConfidence:   cfg.Extraction.MinConfidence,
		DefaultLocale:   cfg.Extraction.DefaultLocale,
		DefaultCurrency: cfg.Extraction.DefaultCurrency,
	}, conversation.WithLogger(logger), conversation.WithTracer(otel.Tracer("expense-assistant/conversation")))

	svc := expenses.NewService(orchestrator, store.Groups, store.Participants, store.Expenses, queue, expenses.Config{
		DefaultLocale:   cfg.Extraction.DefaultLocale,
		DefaultCurrency: cfg.Extraction.DefaultCurrency,
		CacheSize:       cfg.Cache.Size,
		CacheTTL:        cfg.Cache.TTL,
		SessionTTL:      cfg.Cache.SessionTTL,
	}, logger)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		server.RequestIDUnaryInterceptor(),
		observability.TracingUnaryInterceptor(otel.Tracer("expense-assistant/grpc")),
		observability.MetricsUnaryInterceptor(),
	))
	server.RegisterAssistantServiceServer(grpcServer, server.NewAssistantServer(svc, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(server.AssistantServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("expense-assistant listening", "addr", addr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("metrics listening", "addr", cfg.Server.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		cache.RunJanitor(gctx, time.Minute, svc.Cleaners()...)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		queue.Shutdown(shutdownCtx)
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("expense-assistant stopped")
}
