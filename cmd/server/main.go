package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"purchase-order-service/internal/config"
	httpctl "purchase-order-service/internal/controllers/http"
	"purchase-order-service/internal/infra/idempotency"
	mmysql "purchase-order-service/internal/infra/mysql"
	"purchase-order-service/internal/infra/rabbitmq"
	"purchase-order-service/internal/logger"
	"purchase-order-service/internal/repository"
	"purchase-order-service/internal/repository/memory"
	mysqlrepo "purchase-order-service/internal/repository/mysql"
	"purchase-order-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server exited")
}

func run(cfg *config.Config) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher rabbitmq.PublisherInterface = rabbitmq.NoopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return fmt.Errorf("init publisher: %w", err)
		}
		defer p.Close()
		publisher = p
	}

	var idem idempotency.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, idempotency keys may fail", zap.Error(err))
		}
		idem = idempotency.NewRedisStore(rdb, cfg.Redis.IdempotencyTTL)
	}

	svc := services.NewOrderService(store, publisher)
	handler := httpctl.NewHandler(svc, idem)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpctl.NewRouter(handler, &cfg.Server),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting order service",
			zap.String("port", cfg.Server.Port),
			zap.String("database", cfg.Database.Type),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(cfg *config.Config) (repository.Store, func(), error) {
	if cfg.Database.Type == "memory" {
		s := memory.NewStore()
		s.SeedStatuses()
		logger.Warn("using in-memory store, data is lost on exit")
		return s, func() {}, nil
	}

	db, err := mmysql.Open(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := mmysql.Close(db); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}
	return mysqlrepo.NewOrderRepository(db), closeFn, nil
}
