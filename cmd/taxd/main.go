package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Stage, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []service.Option{service.WithMetrics(metrics.New(registry))}

	if cfg.Features.EnableResultCache {
		cache := newResultCache(cfg.Redis, logger)
		defer cache.Close()
		opts = append(opts, service.WithCache(cache))
	}

	if cfg.Features.EnableTaxEvents {
		publisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer publisher.Close()
		opts = append(opts, service.WithPublisher(publisher))
	}

	taxService := service.NewTaxService(cfg.Tax, logger, opts...)

	h := handlers.NewHandlers(taxService, cfg, logger)
	srv := server.New(h, cfg, registry, logger)

	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Int("slabs", len(cfg.Tax.Slabs)),
			zap.Float64("cess_percent", cfg.Tax.CessPercent),
			zap.Float64("fixed_surcharge", cfg.Tax.FixedSurcharge),
			zap.Bool("result_cache", cfg.Features.EnableResultCache),
			zap.Bool("tax_events", cfg.Features.EnableTaxEvents),
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	var consumer *events.KafkaConsumer
	if cfg.Features.EnableRequestConsumer {
		consumer = events.NewKafkaConsumer(cfg.Kafka, taxService, logger)
		go func() {
			if err := consumer.Start(context.Background()); err != nil {
				logger.Error("Event consumer failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if consumer != nil {
		consumer.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newResultCache(cfg config.RedisConfig, logger *zap.Logger) repository.ResultCache {
	if cfg.Backend == config.CacheBackendMemory {
		logger.Info("Using in-memory result cache")
		return repository.NewMemoryResultCache()
	}

	cache := repository.NewRedisResultCache(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("Redis unavailable, results will be computed on every request", zap.Error(err))
	}
	return cache
}
