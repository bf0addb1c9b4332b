package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/ambikamber/ambikamber.com/internal/adapter/api"
	"github.com/ambikamber/ambikamber.com/internal/adapter/handler"
	"github.com/ambikamber/ambikamber.com/internal/adapter/storage"
	"github.com/ambikamber/ambikamber.com/internal/config"
	"github.com/ambikamber/ambikamber.com/internal/core/gate"
	"github.com/ambikamber/ambikamber.com/internal/core/service"
	"github.com/ambikamber/ambikamber.com/internal/logging"
	"github.com/ambikamber/ambikamber.com/internal/metrics"
)

const (
	healthInterval = 10 * time.Second
	sweepInterval  = time.Minute
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.ambikamber/backoffice.yaml)")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	logger, err := logging.New(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping mysql: %w", err)
	}
	logger.Info("connected to mysql", zap.String("action", logging.ActionMySQLConnected))

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	logger.Info("connected to redis", zap.String("action", logging.ActionRedisConnected))

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
		return err
	}
	redisAdapter := storage.NewRedisAdapter(rdb, cfg.Session.TTL, cfg.Gate.LockTTL)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "gateway")

	notify := handler.ContextNotifier{}
	client := api.New(cfg.API.BaseURL, redisAdapter,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithObserver(m),
		api.WithLogger(logger),
		api.WithUnauthorizedHook(handler.SessionExpired(notify)),
	)

	// Initialize services
	audit := service.NewAuditService(mysqlAdapter, redisAdapter, cfg.Audit.QueueSize, logger)
	desks := handler.NewDesks(client, notify, cfg.Gate.IdleExpiry,
		gate.WithRecorder(audit),
		gate.WithObserver(m),
		gate.WithLocker(redisAdapter),
		gate.WithLogger(logger),
	)

	// Start audit workers
	var wg sync.WaitGroup
	for i := 0; i < cfg.Audit.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			service.RunAuditWorker(id, audit.Queue(), mysqlAdapter, logger)
		}(i)
	}
	logger.Info("started audit workers", zap.Int("workers", cfg.Audit.Workers))

	// Initialize gRPC server
	health := handler.NewGRPCHandler(map[string]handler.DependencyCheck{
		"mysql": db.PingContext,
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}, logger)
	grpcServer := grpc.NewServer()
	health.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	// Initialize HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	handler.NewHTTPHandler(handler.HTTPDeps{
		Auth:       service.NewAuthService(client, redisAdapter, notify),
		Admin:      client,
		Catalog:    client,
		Cart:       client,
		Orders:     client,
		Payments:   client,
		Sessions:   redisAdapter,
		Audit:      audit,
		Desks:      desks,
		Notify:     notify,
		Pricing:    cfg.Pricing,
		Metrics:    m,
		Logger:     logger,
		CookieName: cfg.Server.CookieName,
		SessionTTL: cfg.Session.TTL,
	}).Register(router)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("addr", cfg.Server.GRPCAddr))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		health.Run(gctx, healthInterval)
		return nil
	})
	g.Go(func() error {
		desks.Run(gctx, sweepInterval)
		return nil
	})
	logger.Info("gateway started", zap.String("action", logging.ActionServiceStarted))

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.String("action", logging.ActionGracefulShutdown))

		// Stop HTTP server
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown", zap.Error(err))
		}
		logger.Info("HTTP server stopped")

		// Stop gRPC server
		health.Shutdown()
		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	err = g.Wait()

	// Close audit queue and wait for workers
	audit.Close()
	wg.Wait()
	logger.Info("audit workers stopped")

	// Close connections
	rdb.Close()
	db.Close()
	logger.Info("connections closed")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
