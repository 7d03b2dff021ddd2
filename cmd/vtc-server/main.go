package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/vtc/internal/api"
	"github.com/zsiec/vtc/internal/cache"
	"github.com/zsiec/vtc/internal/config"
	"github.com/zsiec/vtc/internal/logger"
	"github.com/zsiec/vtc/internal/server"
	"github.com/zsiec/vtc/pkg/version"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "configs/default.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithField("version", version.GetInfo().Short()).Info("Starting timecode server")
	log.WithField("config_path", configPath).Debug("Configuration loaded")

	// Redis only backs the conversion cache, so the server runs without it.
	var redisClient redis.UniversalClient
	var conversionCache *cache.Cache
	if cfg.Cache.Enabled {
		redisClient = connectRedis(cfg.Redis, log)
		if redisClient != nil {
			conversionCache = cache.New(redisClient, cfg.Cache, log)
		}
	}

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics, log)
	}

	srv := server.New(&cfg.Server, log, redisClient)

	handler, err := api.NewHandler(&cfg.Timecode, conversionCache, srv.ErrorHandler(), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create API handler")
	}
	srv.RegisterRoutes(func(r *mux.Router) {
		handler.RegisterRoutes(srv.APIRouter(r))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Fatal("Server error")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Error("Failed to close Redis connection")
		}
	}

	log.Info("Server shutdown complete")
}

// connectRedis returns a client that answered a ping, or nil.
func connectRedis(cfg config.RedisConfig, log *logrus.Logger) redis.UniversalClient {
	client := cache.NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).WithField("addresses", cfg.Addresses).Warn("Redis unavailable, conversion cache disabled")
		client.Close()
		return nil
	}

	log.WithField("addresses", cfg.Addresses).Info("Connected to Redis successfully")
	return client
}

func startMetricsServer(cfg config.MetricsConfig, log *logrus.Logger) {
	metricsMux := http.NewServeMux()
	metricsMux.Handle(cfg.Path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithField("addr", addr).Info("Starting metrics server")

	if err := http.ListenAndServe(addr, metricsMux); err != nil {
		log.WithError(err).Error("Metrics server error")
	}
}
