package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/cartstore/internal/catalog"
	"github.com/fjod/go_cart/cartstore/internal/config"
	cartgrpc "github.com/fjod/go_cart/cartstore/internal/grpc"
	h "github.com/fjod/go_cart/cartstore/internal/http"
	"github.com/fjod/go_cart/cartstore/internal/kv"
	"github.com/fjod/go_cart/cartstore/internal/logging"
	"github.com/fjod/go_cart/cartstore/internal/metrics"
	"github.com/fjod/go_cart/cartstore/internal/notify"
	"github.com/fjod/go_cart/cartstore/internal/store"
	"github.com/fjod/go_cart/cartstore/internal/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type persistentKV interface {
	store.PersistentKV
	io.Closer
}

type lookupService interface {
	store.StockService
	store.CatalogService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.App.Name, cfg.App.Environment, cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("cartstore stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	tracing.Install()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCart(registry)

	storage, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Warn("close storage failed", zap.Error(err))
		}
	}()

	lookups, catalogHandler, err := openCatalog(cfg.Catalog, logger)
	if err != nil {
		return err
	}

	notifiers := notify.Multi{notify.NewLog(logger), notify.Context{}}
	if len(cfg.Notify.KafkaBrokers) > 0 {
		kafkaNotifier := notify.NewKafka(logger, cfg.Notify.KafkaTopic, cfg.Notify.KafkaBrokers...)
		defer func() { _ = kafkaNotifier.Close() }()
		notifiers = append(notifiers, kafkaNotifier)
		logger.Info("publishing cart notices to kafka",
			zap.Strings("brokers", cfg.Notify.KafkaBrokers),
			zap.String("topic", cfg.Notify.KafkaTopic))
	}

	health := cartgrpc.NewHealth(logger)
	cartStore := store.New(lookups, lookups, storage, notifiers,
		store.WithLogger(logger),
		store.WithMetrics(cartMetrics),
		store.WithStorageKey(cfg.Storage.Key),
		store.WithPersistObserver(health.ObservePersist),
	)
	cartStore.Restore(ctx)

	router := h.NewRouter(h.RouterConfig{
		Cart:           cartStore,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Logger:         logger,
		Gatherer:       registry,
		Catalog:        catalogHandler,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPC.Port))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	grpcServer := health.NewServer()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("grpc health server starting", zap.String("port", cfg.GRPC.Port))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		logger.Error("server failed, shutting down", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	health.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	if err := cartStore.Flush(shutdownCtx); err != nil {
		logger.Error("final cart flush failed", zap.Error(err))
	}
	logger.Info("cartstore stopped")
	return runErr
}

func openStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (persistentKV, error) {
	logger = logger.With(zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := kv.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("cart storage ready", zap.String("path", cfg.SQLitePath))
		return s, nil
	case config.DriverPostgres:
		s, err := kv.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		logger.Info("cart storage ready")
		return s, nil
	case config.DriverRedis:
		client, err := kv.ConnectRedis(ctx, kv.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("cart storage ready", zap.String("addr", cfg.RedisAddr))
		return kv.NewRedis(client, cfg.RedisTTL), nil
	case config.DriverMongo:
		db, err := kv.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		logger.Info("cart storage ready", zap.String("database", cfg.MongoDB))
		return kv.NewMongo(db), nil
	case config.DriverMemory:
		logger.Warn("cart storage is in-memory, carts will not survive restarts")
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// openCatalog returns the stock and product lookups plus the handler serving them under /catalog.
// In remote mode the handler proxies through the same client the store uses.
func openCatalog(cfg config.CatalogConfig, logger *zap.Logger) (lookupService, http.Handler, error) {
	if cfg.Mode == config.CatalogEmbedded {
		mem, err := catalog.LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("embedded catalog loaded", zap.String("seed", cfg.SeedFile), zap.Int("products", len(mem.Products(context.Background()))))
		return mem, catalog.NewHandler(mem), nil
	}

	client, err := catalog.NewClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using remote catalog", zap.String("base_url", cfg.BaseURL))
	return client, catalog.NewHandler(client), nil
}
