package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datawipe/internal/adapter"
	auditService "datawipe/internal/audit"
	auditPublisher "datawipe/internal/audit/publisher"
	auditStore "datawipe/internal/audit/store"
	"datawipe/internal/authz"
	erasureService "datawipe/internal/erasure/service"
	exportService "datawipe/internal/export/service"
	"datawipe/internal/hold"
	"datawipe/internal/oplock"
	"datawipe/internal/platform/config"
	"datawipe/internal/platform/database"
	"datawipe/internal/platform/httpserver"
	"datawipe/internal/platform/kafka/producer"
	"datawipe/internal/platform/logger"
	"datawipe/internal/platform/metrics"
	"datawipe/internal/platform/middleware"
	platformRedis "datawipe/internal/platform/redis"
	"datawipe/internal/profile"
	profileStore "datawipe/internal/profile/store"
	"datawipe/internal/subscriptions"
	subsStore "datawipe/internal/subscriptions/store"
	httptransport "datawipe/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages. Every external system is
// optional: without Postgres the stores are in-memory, without Redis the
// per-user lock is process-local, without Kafka the audit mirror is off.
// Single-node development needs nothing but the binary.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	pool, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient, err := platformRedis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		subscriptionStore subscriptions.Store
		billingStore      profile.Store
		entryStore        auditService.EntryStore
		settledCounter    hold.SettledRecordCounter
	)
	if pool != nil {
		pgSubs := subsStore.NewPostgres(pool.DB())
		subscriptionStore = pgSubs
		settledCounter = pgSubs
		billingStore = profileStore.NewPostgres(pool.DB())
		entryStore = auditStore.NewPostgres(pool.DB())
		log.Info("stores: postgres")
	} else {
		memSubs := subsStore.NewMemory()
		subscriptionStore = memSubs
		settledCounter = memSubs
		billingStore = profileStore.NewMemory()
		entryStore = auditStore.NewMemory()
		log.Warn("stores: in-memory, data will not survive a restart")
	}

	var locker oplock.Locker
	if redisClient != nil {
		locker = oplock.NewRedisLocker(redisClient.Client, 5*time.Minute)
		log.Info("operation lock: redis")
	} else {
		locker = oplock.NewMemoryLocker()
		log.Warn("operation lock: process-local, do not run multiple replicas")
	}

	// Domain registration order is erasure order: subscription data first,
	// the billing profile it hangs off last.
	registry := adapter.NewRegistry()
	registry.MustRegister(subscriptions.NewAdapter(subscriptionStore))
	registry.MustRegister(profile.NewAdapter(billingStore))

	holds := hold.NewEvaluator(log)
	holds.Register(hold.SettlementWindowName,
		hold.NewSettlementWindow(settledCounter, cfg.SettlementProtectionDays, nil))

	auditOpts := []auditService.Option{}
	var kafkaProducer *producer.Producer
	if cfg.Kafka.Brokers != "" {
		kafkaProducer, err = producer.New(producer.Config{
			Brokers: cfg.Kafka.Brokers,
		}, log)
		if err != nil {
			return err
		}
		defer kafkaProducer.Close()
		auditOpts = append(auditOpts,
			auditService.WithMirror(auditPublisher.NewKafka(kafkaProducer, cfg.Kafka.AuditTopic)))
		log.Info("audit mirror: kafka", "topic", cfg.Kafka.AuditTopic)
	}
	audit := auditService.NewService(entryStore, authz.NewCapabilityGate(), log, auditOpts...)

	eraser := erasureService.NewService(registry, holds, locker, audit, m, log,
		erasureService.WithStoreTimeout(cfg.StoreTimeout))
	exporter := exportService.NewService(registry, locker, m, log,
		exportService.WithStoreTimeout(cfg.StoreTimeout))

	var validator middleware.TokenValidator = authz.NewTokenValidator(cfg.JWTSigningKey)
	if cfg.AuthMode == "off" {
		log.Warn("authentication disabled, every request runs as a full-capability actor")
		validator = insecureValidator{}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Erasure:   eraser,
		Export:    exporter,
		Audit:     audit,
		Validator: validator,
		Metrics:   m,
		Logger:    log,
		Health:    healthCheck{pool: pool, redis: redisClient},
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting datawipe", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if kafkaProducer != nil {
		_ = kafkaProducer.Flush(5 * time.Second)
	}
	return srv.Shutdown(ctx)
}

// insecureValidator accepts any token and is only reachable with AUTH_MODE=off.
type insecureValidator struct{}

func (insecureValidator) ValidateToken(string) (authz.Actor, error) {
	return authz.Actor{
		ID:           "dev",
		Capabilities: []string{authz.CapabilityViewAuditTrail},
	}, nil
}

type healthCheck struct {
	pool  *database.Pool
	redis *platformRedis.Client
}

func (h healthCheck) Healthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if h.pool != nil {
		if err := h.pool.Health(ctx); err != nil {
			return false
		}
	}
	if h.redis != nil {
		if err := h.redis.Health(ctx); err != nil {
			return false
		}
	}
	return true
}
