// cmd/match-engine/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"match-engine/internal/cache"
	"match-engine/internal/common/aws"
	"match-engine/internal/common/camunda"
	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/observability"
	"match-engine/internal/matching"
	"match-engine/internal/models"
	"match-engine/internal/notify"
	"match-engine/internal/repository/postgres"

	uas "match-engine/internal/workers/application/update-application-status"
	wa "match-engine/internal/workers/application/withdraw-application"
	gf "match-engine/internal/workers/feed/get-feed"
	gis "match-engine/internal/workers/feed/get-incoming-signals"
	lm "match-engine/internal/workers/match/list-matches"
	sm "match-engine/internal/workers/match/send-message"
	ss "match-engine/internal/workers/swipe/submit-swipe"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting match engine...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		TracingEnabled: cfg.Observability.TracingEnabled,
	}, func(msg string, err error) {
		zapLog.Warn(msg, zap.Error(err))
	})

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
		return err
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	repo := postgres.NewRepository(pg.GetDB(), log)
	if cfg.Database.Postgres.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		zapLog.Info("Schema migrated")
	}

	// --- Redis ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	// --- Notifications ---
	var publishers []notify.Publisher
	if cfg.Notifications.Redis.Enabled {
		publishers = append(publishers, notify.NewRedisPublisher(redis.GetClient(), cfg.Notifications.Redis.Channel))
	}
	if cfg.Notifications.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SNS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		publishers = append(publishers, notify.NewSNSPublisher(snsClient, cfg.Notifications.SNS.TopicARN))
	}
	dispatcher := notify.NewDispatcher(notify.Config{
		QueueSize:      cfg.Notifications.QueueSize,
		Workers:        cfg.Notifications.Workers,
		PublishTimeout: config.GetDuration(cfg.Notifications.PublishTimeout),
	}, log, publishers...)
	zapLog.Info("Notification dispatcher started", zap.Int("publishers", len(publishers)))

	// --- Matching engine ---
	limits := make(map[models.Tier]int, len(cfg.Quota.Tiers))
	for name, limit := range cfg.Quota.Tiers {
		tier, ok := models.ParseTier(name)
		if !ok {
			zapLog.Fatal("unknown subscription tier in quota config", zap.String("tier", name))
		}
		limits[tier] = limit
	}
	quota, err := matching.NewQuotaPolicy(limits)
	if err != nil {
		zapLog.Fatal("invalid quota policy", zap.Error(err))
	}

	engine := matching.NewEngine(matching.Config{
		PoolLimit:          cfg.Matching.PoolLimit,
		RecruiterPoolLimit: cfg.Matching.RecruiterPoolLimit,
		FallbackTopN:       cfg.Matching.FallbackTopN,
		FeedTTL:            config.GetDuration(cfg.Matching.FeedTTL),
		SignalsTTL:         config.GetDuration(cfg.Matching.SignalsTTL),
		SignalsLimit:       cfg.Matching.SignalsLimit,
		MaxMessageLength:   cfg.Matching.MaxMessageLength,
	}, repo, log,
		matching.WithViews(cache.NewCoordinator(redis.GetClient(), log)),
		matching.WithDispatcher(dispatcher),
		matching.WithQuotaPolicy(quota),
	)

	// --- Workers ---
	client := zeebe.GetClient()
	workerCfg := func(taskType string) config.WorkerConfig {
		return config.GetWorkerConfig(cfg, taskType)
	}

	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.JobHandler) {
		if w := camunda.StartWorker(client, taskType, workerCfg(taskType), handler, obs, log); w != nil {
			workers = append(workers, w)
		}
	}

	start(ss.TaskType, ss.NewHandler(ss.LoadConfig(workerCfg(ss.TaskType)), engine, log))
	start(gf.TaskType, gf.NewHandler(gf.LoadConfig(workerCfg(gf.TaskType)), engine, log))
	start(gis.TaskType, gis.NewHandler(gis.LoadConfig(workerCfg(gis.TaskType)), engine, log))
	start(wa.TaskType, wa.NewHandler(wa.LoadConfig(workerCfg(wa.TaskType)), engine, log))
	start(uas.TaskType, uas.NewHandler(uas.LoadConfig(workerCfg(uas.TaskType)), engine, log))
	start(lm.TaskType, lm.NewHandler(lm.LoadConfig(workerCfg(lm.TaskType)), engine, log))
	start(sm.TaskType, sm.NewHandler(sm.LoadConfig(workerCfg(sm.TaskType)), engine, log))

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"status": "ready"}
		code := http.StatusOK
		for name, ping := range map[string]func(context.Context) error{
			"postgres": pg.Ping,
			"redis":    redis.Ping,
			"zeebe":    zeebe.HealthCheck,
		} {
			if err := ping(checkCtx); err != nil {
				checks[name] = err.Error()
				checks["status"] = "not ready"
				code = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		writeStatus(w, code, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zapLog.Error("Error draining notifications", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := redis.Close(); err != nil {
		zapLog.Error("Error closing Redis", zap.Error(err))
	}
	if err := pg.Close(); err != nil {
		zapLog.Error("Error closing PostgreSQL", zap.Error(err))
	}
	obs.Shutdown(shutdownCtx)

	zapLog.Info("Match engine stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
